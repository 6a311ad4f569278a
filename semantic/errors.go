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


package semantic

import "errors"

var (
	// ErrEmbedderRequired is returned when a cache is created without an embedder.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrCacheRequired is returned when a scorer is created without a cache.
	ErrCacheRequired = errors.New("embedding cache is required")

	// ErrEmbeddingFailed wraps errors from the embedding provider.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrEmptyVector indicates a zero-length embedding.
	ErrEmptyVector = errors.New("empty vector")

	// ErrDimensionMismatch indicates vectors of different lengths.
	ErrDimensionMismatch = errors.New("vector dimensions differ")

	// ErrZeroNorm indicates a vector with zero magnitude.
	ErrZeroNorm = errors.New("zero norm vector")

	// ErrNonFinite indicates a vector containing NaN or Inf.
	ErrNonFinite = errors.New("non-finite vector component")
)
