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


package ranker

import "errors"

var (
	// ErrInsufficientTrainingData is returned when there are fewer examples than the configured minimum.
	ErrInsufficientTrainingData = errors.New("insufficient training data")

	// ErrModelValidation is returned when a fitted model fails its sanity checks.
	ErrModelValidation = errors.New("model failed validation")

	// ErrTrainingInProgress is returned when a training run is already active.
	ErrTrainingInProgress = errors.New("training already in progress")

	// ErrSchemaMismatch indicates a model or example whose features do not match Schema.
	ErrSchemaMismatch = errors.New("feature schema mismatch")

	// ErrInvalidBlend indicates a blend weight outside [0, 1].
	ErrInvalidBlend = errors.New("blend weight must be within [0, 1]")

	// ErrFeedbackStoreRequired is returned when a Trainer is created without a feedback store.
	ErrFeedbackStoreRequired = errors.New("feedback store is required")

	// ErrModelStoreRequired is returned when a Trainer is created without a model store.
	ErrModelStoreRequired = errors.New("model store is required")

	// ErrRankerRequired is returned when a Trainer is created without a ranker.
	ErrRankerRequired = errors.New("ranker is required")
)
