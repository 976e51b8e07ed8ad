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


// Package ai defines the embedding-service boundary for casesync.
//
// The document embedding pipeline and chunk search depend on the Embedder
// interface rather than a concrete vendor client, so the embedding model can
// be swapped without touching the sync logic.
//
// Implementation sub-packages:
//
//   - ai/openai: production implementation over OpenAI-compatible APIs
//   - ai/mock: deterministic test double with behavior injection
//
// Production constructors (openai.NewEmbedder) return the interface type to
// enforce abstraction; mock.NewMockEmbedder returns the concrete type so
// tests can inject behavior and assert call counts.
package ai
