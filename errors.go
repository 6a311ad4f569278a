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


package matchmaker

import "errors"

var (
	// ErrSemanticScorerRequired is returned when an engine is created without a semantic scorer.
	ErrSemanticScorerRequired = errors.New("semantic scorer required")

	// ErrResolverRequired is returned when an engine is created without a location resolver.
	ErrResolverRequired = errors.New("location resolver required")

	// ErrFeedbackUnavailable is returned by RecordFeedback and Train when no feedback store is configured.
	ErrFeedbackUnavailable = errors.New("feedback store not configured")

	// ErrTrainingUnavailable is returned by Train when no model store is configured.
	ErrTrainingUnavailable = errors.New("model store not configured")

	// ErrPairRequired is returned when feedback is recorded without a scored pair.
	ErrPairRequired = errors.New("scored pair required")
)
