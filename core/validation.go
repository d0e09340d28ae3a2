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


package core

import "strings"

// MaxPatientAge is the upper bound for the optional patient age field.
const MaxPatientAge = 120

// ValidateReport validates a Report according to domain rules.
//
// Validation rules:
//   - Text must contain at least one non-whitespace character
//   - PatientAge, when present, must be in [0, MaxPatientAge]
//
// A report that fails validation never reaches stage execution.
func ValidateReport(report *Report) error {
	if report == nil {
		return &ValidationError{Field: "report", Reason: "report is nil"}
	}

	if strings.TrimSpace(report.Text) == "" {
		return &ValidationError{Field: "text", Reason: ErrEmptyText.Error()}
	}

	if report.PatientAge != nil {
		age := *report.PatientAge
		if age < 0 || age > MaxPatientAge {
			return &ValidationError{Field: "patient_age", Reason: ErrInvalidPatientAge.Error()}
		}
	}

	return nil
}
