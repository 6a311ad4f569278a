// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/poiesic/matchmaker/core"
	"github.com/poiesic/matchmaker/storage"
)

// FeedbackRepository implements storage.FeedbackStore for BadgerDB.
type FeedbackRepository struct {
	backend *Backend
	seq     *badger.Sequence
}

var _ storage.FeedbackStore = (*FeedbackRepository)(nil)

// NewFeedbackRepository creates a new FeedbackRepository.
func NewFeedbackRepository(backend *Backend) (*FeedbackRepository, error) {
	seq, err := backend.GetSequence(feedbackIDSeq)
	if err != nil {
		return nil, err
	}
	return &FeedbackRepository{
		backend: backend,
		seq:     seq,
	}, nil
}

// Close releases the append sequence.
func (r *FeedbackRepository) Close() error {
	return r.seq.Release()
}

// AppendFeedback validates and stores events in append order.
func (r *FeedbackRepository) AppendFeedback(ctx context.Context, events ...*core.FeedbackEvent) ([]*core.FeedbackEvent, error) {
	for _, event := range events {
		if err := core.ValidateFeedback(event); err != nil {
			return nil, fmt.Errorf("%w: %w", storage.ErrInvalidRecord, err)
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, event := range events {
			seq, err := r.nextSeq()
			if err != nil {
				return err
			}
			if event.ID == "" {
				event.ID = uuid.NewString()
			}
			if event.RecordedAt.IsZero() {
				event.RecordedAt = time.Now().UTC()
			}
			if err := tx.Set(makeFeedbackKey(seq), storage.MarshalFeedbackEvent(event)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return events, nil
}

// nextSeq skips the zero value BadgerDB sequences can return on first call.
func (r *FeedbackRepository) nextSeq() (uint64, error) {
	seq, err := r.seq.Next()
	if err != nil {
		return 0, err
	}
	if seq == 0 {
		return r.seq.Next()
	}
	return seq, nil
}

// ListFeedback returns all events in append order from one read snapshot.
func (r *FeedbackRepository) ListFeedback(ctx context.Context) ([]*core.FeedbackEvent, error) {
	var events []*core.FeedbackEvent
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return scanPrefix(tx, []byte(feedbackPrefix), true, func(_, val []byte) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			event, err := storage.UnmarshalFeedbackEvent(val)
			if err != nil {
				return err
			}
			events = append(events, event)
			return nil
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return events, nil
}

// CountFeedback returns the number of stored events.
func (r *FeedbackRepository) CountFeedback(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return scanPrefix(tx, []byte(feedbackPrefix), false, func(_, _ []byte) error {
			count++
			return nil
		})
	}, false)
	return count, err
}
