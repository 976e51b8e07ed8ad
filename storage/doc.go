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


// Package storage provides the storage abstraction layer for casesync.
//
// It defines repository interfaces that decouple the sync pipeline from the
// storage implementation, plus the binary serialization of persisted records.
//
// # Repositories
//
//   - OrganizationRepository: internal organizations, indexed by external company id
//   - CaseRepository: internal cases, indexed by external ticket id
//   - DocumentRepository: medical documents and their embedding chunks
//
// All lookups the reconciliation path depends on are keyed by an immutable
// external id; implementations must make the find-or-create path atomic (a
// single read-then-write transaction) so duplicate invocations converge.
//
// # Constructor Return Type Pattern
//
// Public constructors in implementation packages return these interfaces to
// enforce abstraction:
//
//	repo, err := badger.NewCaseRepository(backend)  // returns storage.CaseRepository
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support concurrent
// access from multiple goroutines.
package storage
