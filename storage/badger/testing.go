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


package badger

import "github.com/arborhealth/casesync/storage"

// NewMemoryRepositories creates in-memory organization, case, and document
// repositories for testing. Returns orgRepo, caseRepo, docRepo, backend, and
// error. Caller must close the repos and the backend when done.
func NewMemoryRepositories() (storage.OrganizationRepository, storage.CaseRepository, storage.DocumentRepository, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	orgRepo, err := NewOrganizationRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, nil, err
	}

	caseRepo, err := NewCaseRepository(backend)
	if err != nil {
		orgRepo.Close()
		backend.Close()
		return nil, nil, nil, nil, err
	}

	docRepo := NewDocumentRepository(backend)

	return orgRepo, caseRepo, docRepo, backend, nil
}
