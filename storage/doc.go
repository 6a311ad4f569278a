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


// Package storage provides the persistence abstraction layer for the matchmaker.
//
// The scoring and matching core never does I/O on its own; it depends on the
// repository interfaces defined here:
//
//   - FeedbackStore: append-only log of pair outcomes used as training data
//   - ModelStore: versioned ranker models
//   - EmbeddingRepository: persisted embedding cache entries
//   - Stores: the three repositories behind one backend
//
// # Constructor Return Type Pattern
//
// Public constructors return interfaces to keep callers independent of the
// backend:
//
//	stores, err := badger.Open("/path/to/db")  // returns storage.Stores
//
// Use in tests with in-memory storage:
//
//	stores, err := badger.NewMemoryStores()
//	if err != nil {
//	    t.Fatal(err)
//	}
//	defer stores.Close()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Serialization
//
// Records are encoded with the mus-go codecs defined in package core
// (FeedbackEventMUS, RankerModelMUS, CachedEmbeddingMUS).
package storage
