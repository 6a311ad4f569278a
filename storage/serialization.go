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


package storage

import (
	"fmt"

	"github.com/poiesic/matchmaker/core"
)

// MarshalFeedbackEvent serializes a FeedbackEvent to bytes.
func MarshalFeedbackEvent(event *core.FeedbackEvent) []byte {
	buf := make([]byte, core.FeedbackEventMUS.Size(*event))
	core.FeedbackEventMUS.Marshal(*event, buf)
	return buf
}

// UnmarshalFeedbackEvent deserializes a FeedbackEvent from bytes.
func UnmarshalFeedbackEvent(data []byte) (*core.FeedbackEvent, error) {
	event, n, err := core.FeedbackEventMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: feedback event: %w", ErrSerializationFailed, err)
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: feedback event: %d trailing bytes", ErrSerializationFailed, len(data)-n)
	}
	return &event, nil
}

// MarshalRankerModel serializes a RankerModel to bytes.
func MarshalRankerModel(model *core.RankerModel) []byte {
	buf := make([]byte, core.RankerModelMUS.Size(*model))
	core.RankerModelMUS.Marshal(*model, buf)
	return buf
}

// UnmarshalRankerModel deserializes a RankerModel from bytes.
func UnmarshalRankerModel(data []byte) (*core.RankerModel, error) {
	model, n, err := core.RankerModelMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: ranker model: %w", ErrSerializationFailed, err)
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: ranker model: %d trailing bytes", ErrSerializationFailed, len(data)-n)
	}
	return &model, nil
}

// MarshalCachedEmbedding serializes a CachedEmbedding to bytes.
func MarshalCachedEmbedding(entry *core.CachedEmbedding) []byte {
	buf := make([]byte, core.CachedEmbeddingMUS.Size(*entry))
	core.CachedEmbeddingMUS.Marshal(*entry, buf)
	return buf
}

// UnmarshalCachedEmbedding deserializes a CachedEmbedding from bytes.
func UnmarshalCachedEmbedding(data []byte) (*core.CachedEmbedding, error) {
	entry, n, err := core.CachedEmbeddingMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: cached embedding: %w", ErrSerializationFailed, err)
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: cached embedding: %d trailing bytes", ErrSerializationFailed, len(data)-n)
	}
	return &entry, nil
}
