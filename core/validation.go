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

import "fmt"

// ValidateOrganization validates an Organization according to domain rules.
//
// Validation rules:
//   - Name must not be empty
//   - Slug must not be empty
//
// NOT validated:
//   - ExternalCompanyId (0 is valid: organizations may exist without linkage)
//   - ID (0 is valid from database sequences)
func ValidateOrganization(org *Organization) error {
	if org == nil {
		return fmt.Errorf("%w: organization is nil", ErrInvalidOrganization)
	}

	if org.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidOrganization, ErrEmptyName)
	}

	if org.Slug == "" {
		return fmt.Errorf("%w: %w", ErrInvalidOrganization, ErrEmptySlug)
	}

	return nil
}

// ValidateCase validates a Case according to domain rules.
//
// Validation rules:
//   - Subject must not be empty
//
// NOT validated (populated during reconciliation):
//   - ExternalTicketId / ExternalCompanyId (0 is valid: unlinked)
//   - OrganizationId (0 is valid until the organization resolves)
//   - ID (0 is valid from database sequences)
func ValidateCase(c *Case) error {
	if c == nil {
		return fmt.Errorf("%w: case is nil", ErrInvalidCase)
	}

	if c.Subject == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCase, ErrEmptySubject)
	}

	return nil
}

// ValidateChunk validates an EmbeddingChunk according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - Index must not be negative
//
// NOT validated:
//   - Vector (a chunk may be persisted before retrying a failed embedding)
func ValidateChunk(chunk *EmbeddingChunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyChunkText)
	}

	if chunk.Index < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrNegativeChunkIndex)
	}

	return nil
}
