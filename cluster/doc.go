// Copyright 2025 ADEGuard Authors
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

// Package cluster maintains the similarity index that groups safety
// reports into clusters of related events.
//
// New embeddings are matched incrementally against frozen cluster cores;
// a periodic full recluster reruns the density pass over every stored
// embedding, bumps the embedding version, and atomically swaps the
// assignment table. Assignments are only comparable within one embedding
// version.
package cluster
