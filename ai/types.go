package ai

import "github.com/ghanashyam9348/adeguard/core"

// EntityTypes defines the valid categories for extracted clinical entities.
// Extractors must map model-specific labels onto this closed set.
var EntityTypes = []core.EntityType{
	core.EntityDrug,
	core.EntitySymptom,
	core.EntityCondition,
	core.EntityDosage,
}

// ValidEntityType reports whether t is one of the supported entity types.
func ValidEntityType(t core.EntityType) bool {
	for _, et := range EntityTypes {
		if et == t {
			return true
		}
	}
	return false
}
