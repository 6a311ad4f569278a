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


// Package ai provides the embedding abstraction used by the matchmaker.
//
// Semantic similarity between a profile's stated preferences and another
// profile's self-description is computed from text embeddings. This package
// defines the Embedder interface that the semantic scorer depends on, so the
// scoring core never talks to a model server directly.
//
// # Implementation Packages
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, openai.NewEmbedder) return
// INTERFACE types. Test utility constructors (mock.NewMockEmbedder) return
// CONCRETE types so tests can inject behavior and assert on call counts.
//
//	provider, err := openai.NewProvider(ai.NewConfig(ai.WithEmbeddingModel("nomic-embed-text")))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vec, err := provider.Embedder().EmbedText(ctx, "warm, family oriented, loves learning")
//
//	// In tests
//	mockEmbed := mock.NewMockEmbedder()
//	mockEmbed.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return nil, errors.New("unavailable")
//	}
package ai
