// Copyright 2025 Arbor Health Systems
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
	// ErrInvalidOrganization indicates an Organization failed validation.
	ErrInvalidOrganization = errors.New("invalid organization")

	// ErrInvalidCase indicates a Case failed validation.
	ErrInvalidCase = errors.New("invalid case")

	// ErrInvalidChunk indicates an EmbeddingChunk failed validation.
	ErrInvalidChunk = errors.New("invalid embedding chunk")

	// ErrEmptyName indicates a required name field is empty.
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrEmptySlug indicates the organization Slug field is empty.
	ErrEmptySlug = errors.New("slug cannot be empty")

	// ErrEmptySubject indicates the case Subject field is empty.
	ErrEmptySubject = errors.New("subject cannot be empty")

	// ErrEmptyChunkText indicates the chunk Text field is empty.
	ErrEmptyChunkText = errors.New("chunk text cannot be empty")

	// ErrNegativeChunkIndex indicates a chunk index below zero.
	ErrNegativeChunkIndex = errors.New("chunk index cannot be negative")
)
