package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// Binary codecs for persisted records. Field order is the wire order.

type feedbackEventMUS struct{}

// FeedbackEventMUS serializes FeedbackEvent values.
var FeedbackEventMUS = feedbackEventMUS{}

func (feedbackEventMUS) Size(v FeedbackEvent) (size int) {
	size += ord.String.Size(v.ID)
	size += ord.String.Size(v.ProfileA)
	size += ord.String.Size(v.ProfileB)
	size += varint.Int.Size(int(v.Outcome))
	size += sizeFloat64s(v.Features)
	size += ord.String.Size(v.Reason)
	size += sizeTime(v.RecordedAt)
	return
}

func (feedbackEventMUS) Marshal(v FeedbackEvent, bs []byte) (n int) {
	w := writer{bs: bs}
	w.string(v.ID)
	w.string(v.ProfileA)
	w.string(v.ProfileB)
	w.int(int(v.Outcome))
	w.float64s(v.Features)
	w.string(v.Reason)
	w.time(v.RecordedAt)
	return w.n
}

func (feedbackEventMUS) Unmarshal(bs []byte) (v FeedbackEvent, n int, err error) {
	r := reader{bs: bs}
	v.ID = r.string()
	v.ProfileA = r.string()
	v.ProfileB = r.string()
	v.Outcome = FeedbackOutcome(r.int())
	v.Features = r.float64s()
	v.Reason = r.string()
	v.RecordedAt = r.time()
	return v, r.n, r.err
}

func (s feedbackEventMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type rankerModelMUS struct{}

// RankerModelMUS serializes RankerModel values.
var RankerModelMUS = rankerModelMUS{}

func (rankerModelMUS) Size(v RankerModel) (size int) {
	size += varint.Uint64.Size(v.Version)
	size += varint.Int.Size(len(v.Schema))
	for _, s := range v.Schema {
		size += ord.String.Size(s)
	}
	size += sizeFloat64s(v.Weights)
	size += raw.Float64.Size(v.Bias)
	size += varint.Int.Size(v.ExampleCount)
	size += raw.Float64.Size(v.TrainingRMSE)
	size += raw.Float64.Size(v.NDCG)
	size += sizeTime(v.TrainedAt)
	return
}

func (rankerModelMUS) Marshal(v RankerModel, bs []byte) (n int) {
	w := writer{bs: bs}
	w.uint64(v.Version)
	w.int(len(v.Schema))
	for _, s := range v.Schema {
		w.string(s)
	}
	w.float64s(v.Weights)
	w.float64(v.Bias)
	w.int(v.ExampleCount)
	w.float64(v.TrainingRMSE)
	w.float64(v.NDCG)
	w.time(v.TrainedAt)
	return w.n
}

func (rankerModelMUS) Unmarshal(bs []byte) (v RankerModel, n int, err error) {
	r := reader{bs: bs}
	v.Version = r.uint64()
	if count := r.length(); count > 0 {
		v.Schema = make([]string, count)
		for i := range v.Schema {
			v.Schema[i] = r.string()
		}
	}
	v.Weights = r.float64s()
	v.Bias = r.float64()
	v.ExampleCount = r.int()
	v.TrainingRMSE = r.float64()
	v.NDCG = r.float64()
	v.TrainedAt = r.time()
	return v, r.n, r.err
}

func (s rankerModelMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

// CachedEmbedding is the persisted form of an embedding cache entry.
type CachedEmbedding struct {
	ProfileID  string
	Kind       string
	Hash       string
	Vector     []float32
	ComputedAt time.Time
}

type cachedEmbeddingMUS struct{}

// CachedEmbeddingMUS serializes CachedEmbedding values.
var CachedEmbeddingMUS = cachedEmbeddingMUS{}

func (cachedEmbeddingMUS) Size(v CachedEmbedding) (size int) {
	size += ord.String.Size(v.ProfileID)
	size += ord.String.Size(v.Kind)
	size += ord.String.Size(v.Hash)
	size += varint.Int.Size(len(v.Vector))
	for _, f := range v.Vector {
		size += raw.Float32.Size(f)
	}
	size += sizeTime(v.ComputedAt)
	return
}

func (cachedEmbeddingMUS) Marshal(v CachedEmbedding, bs []byte) (n int) {
	w := writer{bs: bs}
	w.string(v.ProfileID)
	w.string(v.Kind)
	w.string(v.Hash)
	w.int(len(v.Vector))
	for _, f := range v.Vector {
		w.n += raw.Float32.Marshal(f, w.bs[w.n:])
	}
	w.time(v.ComputedAt)
	return w.n
}

func (cachedEmbeddingMUS) Unmarshal(bs []byte) (v CachedEmbedding, n int, err error) {
	r := reader{bs: bs}
	v.ProfileID = r.string()
	v.Kind = r.string()
	v.Hash = r.string()
	if count := r.length(); count > 0 {
		v.Vector = make([]float32, count)
		for i := range v.Vector {
			v.Vector[i] = r.float32()
		}
	}
	v.ComputedAt = r.time()
	return v, r.n, r.err
}

func (s cachedEmbeddingMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

// Zero times are written as a single false flag.
func sizeTime(t time.Time) int {
	if t.IsZero() {
		return ord.Bool.Size(false)
	}
	return ord.Bool.Size(true) + varint.Int64.Size(t.UnixMicro())
}

func sizeFloat64s(fs []float64) (size int) {
	size = varint.Int.Size(len(fs))
	for _, f := range fs {
		size += raw.Float64.Size(f)
	}
	return
}

type writer struct {
	bs []byte
	n  int
}

func (w *writer) string(s string) { w.n += ord.String.Marshal(s, w.bs[w.n:]) }
func (w *writer) int(i int)       { w.n += varint.Int.Marshal(i, w.bs[w.n:]) }
func (w *writer) uint64(u uint64) { w.n += varint.Uint64.Marshal(u, w.bs[w.n:]) }
func (w *writer) float64(f float64) {
	w.n += raw.Float64.Marshal(f, w.bs[w.n:])
}

func (w *writer) float64s(fs []float64) {
	w.int(len(fs))
	for _, f := range fs {
		w.float64(f)
	}
}

func (w *writer) time(t time.Time) {
	if t.IsZero() {
		w.n += ord.Bool.Marshal(false, w.bs[w.n:])
		return
	}
	w.n += ord.Bool.Marshal(true, w.bs[w.n:])
	w.n += varint.Int64.Marshal(t.UnixMicro(), w.bs[w.n:])
}

// reader accumulates the first error; later reads become no-ops.
type reader struct {
	bs  []byte
	n   int
	err error
}

func (r *reader) string() (v string) {
	if r.err != nil {
		return
	}
	var n int
	v, n, r.err = ord.String.Unmarshal(r.bs[r.n:])
	r.n += n
	return
}

func (r *reader) int() (v int) {
	if r.err != nil {
		return
	}
	var n int
	v, n, r.err = varint.Int.Unmarshal(r.bs[r.n:])
	r.n += n
	return
}

func (r *reader) length() int {
	l := r.int()
	if l < 0 || l > len(r.bs) {
		if r.err == nil {
			r.err = ErrCorruptRecord
		}
		return 0
	}
	return l
}

func (r *reader) uint64() (v uint64) {
	if r.err != nil {
		return
	}
	var n int
	v, n, r.err = varint.Uint64.Unmarshal(r.bs[r.n:])
	r.n += n
	return
}

func (r *reader) float64() (v float64) {
	if r.err != nil {
		return
	}
	var n int
	v, n, r.err = raw.Float64.Unmarshal(r.bs[r.n:])
	r.n += n
	return
}

func (r *reader) float32() (v float32) {
	if r.err != nil {
		return
	}
	var n int
	v, n, r.err = raw.Float32.Unmarshal(r.bs[r.n:])
	r.n += n
	return
}

func (r *reader) float64s() []float64 {
	count := r.length()
	if count == 0 {
		return nil
	}
	fs := make([]float64, count)
	for i := range fs {
		fs[i] = r.float64()
	}
	return fs
}

func (r *reader) time() time.Time {
	if r.err != nil {
		return time.Time{}
	}
	set, n, err := ord.Bool.Unmarshal(r.bs[r.n:])
	r.n += n
	if err != nil {
		r.err = err
		return time.Time{}
	}
	if !set {
		return time.Time{}
	}
	var micros int64
	micros, n, r.err = varint.Int64.Unmarshal(r.bs[r.n:])
	r.n += n
	if r.err != nil {
		return time.Time{}
	}
	return time.UnixMicro(micros).UTC()
}
