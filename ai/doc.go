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


// Package ai defines the inference capability abstractions used by the
// orchestration engine.
//
// Four capabilities exist: entity extraction, severity classification,
// similarity encoding, and explanation. The pipeline depends only on the
// interfaces here, never on a concrete backend, so models can be swapped
// or mocked without touching orchestration logic.
//
// # Implementation Packages
//
//   - ai/openai: production implementation over OpenAI-compatible APIs
//   - ai/mock: deterministic test doubles with injectable behavior
//
// Public constructors in ai/openai return interface types to enforce the
// abstraction. Mock constructors return concrete types so tests can inject
// behavior via the Func fields and read call counts.
//
// # Usage
//
//	cfg := ai.NewConfig(ai.WithHost("http://localhost:11434/v1"))
//	provider, err := openai.NewProvider(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	entities, err := provider.Extractor().ExtractEntities(ctx, reportText)
package ai
