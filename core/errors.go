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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidProfile indicates a Profile failed validation.
	ErrInvalidProfile = errors.New("invalid profile")

	// ErrInvalidCriteria indicates a PreferenceCriteria failed validation.
	ErrInvalidCriteria = errors.New("invalid preference criteria")

	// ErrEmptyID indicates the profile ID is empty.
	ErrEmptyID = errors.New("id cannot be empty")

	// ErrAgeOutOfRange indicates an age outside MinAge..MaxAge.
	ErrAgeOutOfRange = errors.New("age out of range")

	// ErrAgeRangeInverted indicates MaxAge is below MinAge.
	ErrAgeRangeInverted = errors.New("max age must not be below min age")

	// ErrNegativeDistance indicates a negative MaxDistanceKm.
	ErrNegativeDistance = errors.New("max distance cannot be negative")

	// ErrMissingGender indicates the gender is unspecified.
	ErrMissingGender = errors.New("gender is required")

	// ErrInvalidEnum indicates an enum field holds an undeclared value.
	ErrInvalidEnum = errors.New("invalid enum value")

	// ErrDuplicateProfile indicates two profiles of one population share an ID.
	ErrDuplicateProfile = errors.New("duplicate profile id")

	// ErrProfileMismatch indicates criteria belong to a different profile.
	ErrProfileMismatch = errors.New("criteria do not belong to profile")

	// ErrUnknownValue indicates a string could not be parsed into an enum.
	ErrUnknownValue = errors.New("unknown value")

	// ErrInvalidFeedback indicates a FeedbackEvent failed validation.
	ErrInvalidFeedback = errors.New("invalid feedback event")

	// ErrCorruptRecord indicates a persisted record could not be decoded.
	ErrCorruptRecord = errors.New("corrupt record")
)
