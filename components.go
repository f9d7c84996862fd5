package main

import (
	"context"
	"fmt"
)

type Variant string

const (
	VariantFlat       Variant = "flat"
	VariantNormalized Variant = "normalized"
)

var Variants = []Variant{VariantFlat, VariantNormalized}

func ParseVariant(value string) (Variant, error) {
	for _, variant := range Variants {
		if string(variant) == value {
			return variant, nil
		}
	}
	return "", fmt.Errorf("unknown schema variant '%v' (expected one of %v)", value, Variants)
}

type Query struct {
	Name string
	SQL  string
}

// Schema materializes a dataset table inside a store. Load must fully replace
// whatever tables a previous dataset left behind.
type Schema interface {
	Variant() Variant
	Load(ctx context.Context, store *Store, table *Table) error
}

func SchemaFor(variant Variant, config *Config) (Schema, error) {
	switch variant {
	case VariantFlat:
		return &SchemaFlat{TableName: FlatTableName}, nil
	case VariantNormalized:
		return &SchemaNormalized{NormalizeBirthDates: config.NormalizeBirthDates}, nil
	}
	return nil, fmt.Errorf("no schema for variant '%v'", variant)
}

// LoadError marks a dataset that could not be read or materialized. The
// orchestrator keeps going after one.
type LoadError struct {
	Dataset string
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %v: %v", e.Dataset, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
