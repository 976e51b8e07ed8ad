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


// Package search provides semantic retrieval over embedded document chunks.
//
// The Searcher embeds a free-text query and scans stored chunk vectors by
// cosine similarity. Chunks whose text also contains every significant query
// word verbatim get a score boost, so exact terminology (drug names, test
// codes) ranks above merely related text.
package search
