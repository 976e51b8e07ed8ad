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


package storage

import (
	"fmt"
	"time"

	"github.com/arborhealth/casesync/core"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Serializers are hand-composed from mus-go primitives. The persisted records
// carry opaque JSON-text blobs and zero-as-null external ids, spelled out
// here field by field in declaration order.

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, varint.Uint64.Size(uint64(id)))
	varint.Uint64.Marshal(uint64(id), buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	raw, _, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return core.ID(raw), nil
}

// MarshalOrganization serializes an Organization to bytes.
func MarshalOrganization(org *core.Organization) []byte {
	size := varint.Uint64.Size(uint64(org.Id)) +
		ord.String.Size(org.Name) +
		ord.String.Size(org.Slug) +
		varint.Int64.Size(org.ExternalCompanyId) +
		sizeStrings(org.Domains) +
		ord.String.Size(org.Description) +
		sizeTime(org.InsertedAt) +
		sizeTime(org.UpdatedAt)

	buf := make([]byte, size)
	n := varint.Uint64.Marshal(uint64(org.Id), buf)
	n += ord.String.Marshal(org.Name, buf[n:])
	n += ord.String.Marshal(org.Slug, buf[n:])
	n += varint.Int64.Marshal(org.ExternalCompanyId, buf[n:])
	n += marshalStrings(org.Domains, buf[n:])
	n += ord.String.Marshal(org.Description, buf[n:])
	n += marshalTime(org.InsertedAt, buf[n:])
	marshalTime(org.UpdatedAt, buf[n:])
	return buf
}

// UnmarshalOrganization deserializes an Organization from bytes.
func UnmarshalOrganization(data []byte) (*core.Organization, error) {
	org := &core.Organization{}
	n := 0

	err := decode(data, &n, func(bs []byte) (int, error) {
		raw, m, err := varint.Uint64.Unmarshal(bs)
		org.Id = core.ID(raw)
		return m, err
	}, func(bs []byte) (int, error) {
		var m int
		var err error
		org.Name, m, err = ord.String.Unmarshal(bs)
		return m, err
	}, func(bs []byte) (int, error) {
		var m int
		var err error
		org.Slug, m, err = ord.String.Unmarshal(bs)
		return m, err
	}, func(bs []byte) (int, error) {
		var m int
		var err error
		org.ExternalCompanyId, m, err = varint.Int64.Unmarshal(bs)
		return m, err
	}, func(bs []byte) (int, error) {
		var m int
		var err error
		org.Domains, m, err = unmarshalStrings(bs)
		return m, err
	}, func(bs []byte) (int, error) {
		var m int
		var err error
		org.Description, m, err = ord.String.Unmarshal(bs)
		return m, err
	}, func(bs []byte) (int, error) {
		var m int
		var err error
		org.InsertedAt, m, err = unmarshalTime(bs)
		return m, err
	}, func(bs []byte) (int, error) {
		var m int
		var err error
		org.UpdatedAt, m, err = unmarshalTime(bs)
		return m, err
	})
	if err != nil {
		return nil, err
	}
	return org, nil
}

// MarshalCase serializes a Case to bytes.
func MarshalCase(c *core.Case) []byte {
	size := varint.Uint64.Size(uint64(c.Id)) +
		varint.Int64.Size(c.ExternalTicketId) +
		varint.Int64.Size(c.ExternalCompanyId) +
		ord.String.Size(c.Subject) +
		ord.String.Size(c.CaseType) +
		ord.String.Size(string(c.Status)) +
		ord.String.Size(string(c.Priority)) +
		ord.String.Size(c.CompanyName) +
		varint.Uint64.Size(uint64(c.OrganizationId)) +
		varint.Int64.Size(c.RequesterId) +
		varint.Int64.Size(c.AssigneeId) +
		varint.Int.Size(c.AgeDays) +
		sizeStrings(c.Tags) +
		ord.String.Size(c.CustomFields) +
		sizeTime(c.CreatedAt) +
		sizeTime(c.UpdatedAt) +
		sizeTime(c.InsertedAt)

	buf := make([]byte, size)
	n := varint.Uint64.Marshal(uint64(c.Id), buf)
	n += varint.Int64.Marshal(c.ExternalTicketId, buf[n:])
	n += varint.Int64.Marshal(c.ExternalCompanyId, buf[n:])
	n += ord.String.Marshal(c.Subject, buf[n:])
	n += ord.String.Marshal(c.CaseType, buf[n:])
	n += ord.String.Marshal(string(c.Status), buf[n:])
	n += ord.String.Marshal(string(c.Priority), buf[n:])
	n += ord.String.Marshal(c.CompanyName, buf[n:])
	n += varint.Uint64.Marshal(uint64(c.OrganizationId), buf[n:])
	n += varint.Int64.Marshal(c.RequesterId, buf[n:])
	n += varint.Int64.Marshal(c.AssigneeId, buf[n:])
	n += varint.Int.Marshal(c.AgeDays, buf[n:])
	n += marshalStrings(c.Tags, buf[n:])
	n += ord.String.Marshal(c.CustomFields, buf[n:])
	n += marshalTime(c.CreatedAt, buf[n:])
	n += marshalTime(c.UpdatedAt, buf[n:])
	marshalTime(c.InsertedAt, buf[n:])
	return buf
}

// UnmarshalCase deserializes a Case from bytes.
func UnmarshalCase(data []byte) (*core.Case, error) {
	c := &core.Case{}
	n := 0

	var status, priority string
	err := decode(data, &n, func(bs []byte) (int, error) {
		raw, m, err := varint.Uint64.Unmarshal(bs)
		c.Id = core.ID(raw)
		return m, err
	}, func(bs []byte) (int, error) {
		var m int
		var err error
		c.ExternalTicketId, m, err = varint.Int64.Unmarshal(bs)
		return m, err
	}, func(bs []byte) (int, error) {
		var m int
		var err error
		c.ExternalCompanyId, m, err = varint.Int64.Unmarshal(bs)
		return m, err
	}, func(bs []byte) (int, error) {
		var m int
		var err error
		c.Subject, m, err = ord.String.Unmarshal(bs)
		return m, err
	}, func(bs []byte) (int, error) {
		var m int
		var err error
		c.CaseType, m, err = ord.String.Unmarshal(bs)
		return m, err
	}, func(bs []byte) (int, error) {
		var m int
		var err error
		status, m, err = ord.String.Unmarshal(bs)
		return m, err
	}, func(bs []byte) (int, error) {
		var m int
		var err error
		priority, m, err = ord.String.Unmarshal(bs)
		return m, err
	}, func(bs []byte) (int, error) {
		var m int
		var err error
		c.CompanyName, m, err = ord.String.Unmarshal(bs)
		return m, err
	}, func(bs []byte) (int, error) {
		raw, m, err := varint.Uint64.Unmarshal(bs)
		c.OrganizationId = core.ID(raw)
		return m, err
	}, func(bs []byte) (int, error) {
		var m int
		var err error
		c.RequesterId, m, err = varint.Int64.Unmarshal(bs)
		return m, err
	}, func(bs []byte) (int, error) {
		var m int
		var err error
		c.AssigneeId, m, err = varint.Int64.Unmarshal(bs)
		return m, err
	}, func(bs []byte) (int, error) {
		var m int
		var err error
		c.AgeDays, m, err = varint.Int.Unmarshal(bs)
		return m, err
	}, func(bs []byte) (int, error) {
		var m int
		var err error
		c.Tags, m, err = unmarshalStrings(bs)
		return m, err
	}, func(bs []byte) (int, error) {
		var m int
		var err error
		c.CustomFields, m, err = ord.String.Unmarshal(bs)
		return m, err
	}, func(bs []byte) (int, error) {
		var m int
		var err error
		c.CreatedAt, m, err = unmarshalTime(bs)
		return m, err
	}, func(bs []byte) (int, error) {
		var m int
		var err error
		c.UpdatedAt, m, err = unmarshalTime(bs)
		return m, err
	}, func(bs []byte) (int, error) {
		var m int
		var err error
		c.InsertedAt, m, err = unmarshalTime(bs)
		return m, err
	})
	if err != nil {
		return nil, err
	}
	c.Status = core.CaseStatus(status)
	c.Priority = core.CasePriority(priority)
	return c, nil
}

// MarshalDocument serializes a MedicalDocument to bytes.
func MarshalDocument(doc *core.MedicalDocument) []byte {
	size := varint.Uint64.Size(uint64(doc.Id)) +
		varint.Uint64.Size(uint64(doc.CaseId)) +
		varint.Uint64.Size(uint64(doc.WorkerId)) +
		ord.String.Size(doc.Filename) +
		ord.String.Size(doc.Kind) +
		ord.String.Size(doc.ExtractedText) +
		sizeTime(doc.InsertedAt) +
		sizeTime(doc.UpdatedAt)

	buf := make([]byte, size)
	n := varint.Uint64.Marshal(uint64(doc.Id), buf)
	n += varint.Uint64.Marshal(uint64(doc.CaseId), buf[n:])
	n += varint.Uint64.Marshal(uint64(doc.WorkerId), buf[n:])
	n += ord.String.Marshal(doc.Filename, buf[n:])
	n += ord.String.Marshal(doc.Kind, buf[n:])
	n += ord.String.Marshal(doc.ExtractedText, buf[n:])
	n += marshalTime(doc.InsertedAt, buf[n:])
	marshalTime(doc.UpdatedAt, buf[n:])
	return buf
}

// UnmarshalDocument deserializes a MedicalDocument from bytes.
func UnmarshalDocument(data []byte) (*core.MedicalDocument, error) {
	doc := &core.MedicalDocument{}
	n := 0

	err := decode(data, &n, func(bs []byte) (int, error) {
		raw, m, err := varint.Uint64.Unmarshal(bs)
		doc.Id = core.ID(raw)
		return m, err
	}, func(bs []byte) (int, error) {
		raw, m, err := varint.Uint64.Unmarshal(bs)
		doc.CaseId = core.ID(raw)
		return m, err
	}, func(bs []byte) (int, error) {
		raw, m, err := varint.Uint64.Unmarshal(bs)
		doc.WorkerId = core.ID(raw)
		return m, err
	}, func(bs []byte) (int, error) {
		var m int
		var err error
		doc.Filename, m, err = ord.String.Unmarshal(bs)
		return m, err
	}, func(bs []byte) (int, error) {
		var m int
		var err error
		doc.Kind, m, err = ord.String.Unmarshal(bs)
		return m, err
	}, func(bs []byte) (int, error) {
		var m int
		var err error
		doc.ExtractedText, m, err = ord.String.Unmarshal(bs)
		return m, err
	}, func(bs []byte) (int, error) {
		var m int
		var err error
		doc.InsertedAt, m, err = unmarshalTime(bs)
		return m, err
	}, func(bs []byte) (int, error) {
		var m int
		var err error
		doc.UpdatedAt, m, err = unmarshalTime(bs)
		return m, err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// MarshalChunk serializes an EmbeddingChunk to bytes.
func MarshalChunk(chunk *core.EmbeddingChunk) []byte {
	size := varint.Uint64.Size(uint64(chunk.DocumentId)) +
		varint.Uint64.Size(uint64(chunk.CaseId)) +
		varint.Int.Size(chunk.Index) +
		ord.String.Size(chunk.Text) +
		sizeVector(chunk.Vector) +
		ord.String.Size(chunk.Filename) +
		ord.String.Size(chunk.Kind) +
		sizeTime(chunk.InsertedAt)

	buf := make([]byte, size)
	n := varint.Uint64.Marshal(uint64(chunk.DocumentId), buf)
	n += varint.Uint64.Marshal(uint64(chunk.CaseId), buf[n:])
	n += varint.Int.Marshal(chunk.Index, buf[n:])
	n += ord.String.Marshal(chunk.Text, buf[n:])
	n += marshalVector(chunk.Vector, buf[n:])
	n += ord.String.Marshal(chunk.Filename, buf[n:])
	n += ord.String.Marshal(chunk.Kind, buf[n:])
	marshalTime(chunk.InsertedAt, buf[n:])
	return buf
}

// UnmarshalChunk deserializes an EmbeddingChunk from bytes.
func UnmarshalChunk(data []byte) (*core.EmbeddingChunk, error) {
	chunk := &core.EmbeddingChunk{}
	n := 0

	err := decode(data, &n, func(bs []byte) (int, error) {
		raw, m, err := varint.Uint64.Unmarshal(bs)
		chunk.DocumentId = core.ID(raw)
		return m, err
	}, func(bs []byte) (int, error) {
		raw, m, err := varint.Uint64.Unmarshal(bs)
		chunk.CaseId = core.ID(raw)
		return m, err
	}, func(bs []byte) (int, error) {
		var m int
		var err error
		chunk.Index, m, err = varint.Int.Unmarshal(bs)
		return m, err
	}, func(bs []byte) (int, error) {
		var m int
		var err error
		chunk.Text, m, err = ord.String.Unmarshal(bs)
		return m, err
	}, func(bs []byte) (int, error) {
		var m int
		var err error
		chunk.Vector, m, err = unmarshalVector(bs)
		return m, err
	}, func(bs []byte) (int, error) {
		var m int
		var err error
		chunk.Filename, m, err = ord.String.Unmarshal(bs)
		return m, err
	}, func(bs []byte) (int, error) {
		var m int
		var err error
		chunk.Kind, m, err = ord.String.Unmarshal(bs)
		return m, err
	}, func(bs []byte) (int, error) {
		var m int
		var err error
		chunk.InsertedAt, m, err = unmarshalTime(bs)
		return m, err
	})
	if err != nil {
		return nil, err
	}
	return chunk, nil
}

// decode runs field decoders in order over data, advancing *n, and wraps the
// first failure in ErrSerializationFailed.
func decode(data []byte, n *int, fields ...func([]byte) (int, error)) error {
	for _, field := range fields {
		m, err := field(data[*n:])
		if err != nil {
			return fmt.Errorf("%w: %w", ErrSerializationFailed, err)
		}
		*n += m
	}
	return nil
}

func sizeStrings(values []string) int {
	size := varint.Int.Size(len(values))
	for _, v := range values {
		size += ord.String.Size(v)
	}
	return size
}

func marshalStrings(values []string, bs []byte) int {
	n := varint.Int.Marshal(len(values), bs)
	for _, v := range values {
		n += ord.String.Marshal(v, bs[n:])
	}
	return n
}

func unmarshalStrings(bs []byte) ([]string, int, error) {
	count, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if count == 0 {
		return nil, n, nil
	}
	values := make([]string, count)
	for i := 0; i < count; i++ {
		var m int
		values[i], m, err = ord.String.Unmarshal(bs[n:])
		if err != nil {
			return nil, n, err
		}
		n += m
	}
	return values, n, nil
}

func sizeVector(vector []float32) int {
	size := varint.Int.Size(len(vector))
	for _, v := range vector {
		size += varint.Float32.Size(v)
	}
	return size
}

func marshalVector(vector []float32, bs []byte) int {
	n := varint.Int.Marshal(len(vector), bs)
	for _, v := range vector {
		n += varint.Float32.Marshal(v, bs[n:])
	}
	return n
}

func unmarshalVector(bs []byte) ([]float32, int, error) {
	count, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if count == 0 {
		return nil, n, nil
	}
	vector := make([]float32, count)
	for i := 0; i < count; i++ {
		var m int
		vector[i], m, err = varint.Float32.Unmarshal(bs[n:])
		if err != nil {
			return nil, n, err
		}
		n += m
	}
	return vector, n, nil
}

// Timestamps travel as unix microseconds; the zero time is stored as 0.
func sizeTime(t time.Time) int {
	return varint.Int64.Size(timeMicro(t))
}

func marshalTime(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(timeMicro(t), bs)
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	micro, n, err := varint.Int64.Unmarshal(bs)
	if err != nil || micro == 0 {
		return time.Time{}, n, err
	}
	return time.UnixMicro(micro).UTC(), n, nil
}

func timeMicro(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMicro()
}
