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


// Package openai provides ai.Provider implementations backed by
// OpenAI-compatible APIs (Ollama, LocalAI, vLLM, OpenAI).
//
// Extraction, classification, and additive explanation run through chat
// completions with JSON-mode prompts at temperature zero; similarity
// encoding runs through the embeddings endpoint. All capabilities are safe
// for concurrent use.
package openai
