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

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// IDMUS serializes ID values in MUS format.
var IDMUS = idMUS{}

type idMUS struct{}

func (idMUS) Marshal(id ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

// HistoryRecordMUS serializes HistoryRecord values in MUS format.
// Timestamps are stored as Unix microseconds.
var HistoryRecordMUS = historyRecordMUS{}

type historyRecordMUS struct{}

func (historyRecordMUS) Marshal(r HistoryRecord, bs []byte) (n int) {
	n = IDMUS.Marshal(r.Id, bs)
	n += ord.String.Marshal(r.Query, bs[n:])
	n += varint.PositiveInt.Marshal(len(r.Backends), bs[n:])
	for _, backend := range r.Backends {
		n += ord.String.Marshal(backend, bs[n:])
	}
	n += varint.Int64.Marshal(int64(r.Elapsed), bs[n:])
	n += ord.Bool.Marshal(r.Partial, bs[n:])
	n += varint.PositiveInt.Marshal(r.SourceCount, bs[n:])
	n += varint.Int64.Marshal(r.CreatedAt.UnixMicro(), bs[n:])
	return n
}

func (historyRecordMUS) Unmarshal(bs []byte) (r HistoryRecord, n int, err error) {
	var m int
	r.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}

	r.Query, m, err = ord.String.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}

	var count int
	count, m, err = varint.PositiveInt.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	for i := 0; i < count; i++ {
		var backend string
		backend, m, err = ord.String.Unmarshal(bs[n:])
		n += m
		if err != nil {
			return
		}
		r.Backends = append(r.Backends, backend)
	}

	var elapsed int64
	elapsed, m, err = varint.Int64.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	r.Elapsed = time.Duration(elapsed)

	r.Partial, m, err = ord.Bool.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}

	r.SourceCount, m, err = varint.PositiveInt.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}

	var created int64
	created, m, err = varint.Int64.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	r.CreatedAt = time.UnixMicro(created).UTC()
	return
}

func (historyRecordMUS) Size(r HistoryRecord) (size int) {
	size = IDMUS.Size(r.Id)
	size += ord.String.Size(r.Query)
	size += varint.PositiveInt.Size(len(r.Backends))
	for _, backend := range r.Backends {
		size += ord.String.Size(backend)
	}
	size += varint.Int64.Size(int64(r.Elapsed))
	size += ord.Bool.Size(r.Partial)
	size += varint.PositiveInt.Size(r.SourceCount)
	size += varint.Int64.Size(r.CreatedAt.UnixMicro())
	return size
}
