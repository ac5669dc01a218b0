package model

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

// File is the YAML form of a model.
//
//	entities:
//	  - name: order
//	    table: orders
//	    schema: sales
//	    properties:
//	      - { name: id, column: id, type: bigint, primary_key: true }
//	      - { name: number, type: integer }
//	      - { name: note, type: varchar(200), nullable: true }
type File struct {
	Entities []EntityFile `yaml:"entities"`
}

// EntityFile is one entity of a model file.
type EntityFile struct {
	Name       string         `yaml:"name"`
	Table      string         `yaml:"table"`
	Schema     string         `yaml:"schema"`
	Properties []PropertyFile `yaml:"properties"`
}

// PropertyFile is one property of a model file. Column defaults to Name.
type PropertyFile struct {
	Name       string `yaml:"name"`
	Column     string `yaml:"column"`
	Type       string `yaml:"type"`
	PrimaryKey bool   `yaml:"primary_key"`
	Nullable   *bool  `yaml:"nullable"`
}

// LoadFile reads a YAML model file.
func LoadFile(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse builds a Model from YAML. Entities from YAML have no Go type and can
// only be loaded by table name.
func Parse(data []byte) (*Model, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("invalid model YAML: %v: %w", err, pgbulk.ErrInvalidConfig)
	}
	if len(f.Entities) == 0 {
		return nil, fmt.Errorf("model defines no entities: %w", pgbulk.ErrInvalidConfig)
	}

	m := New()
	var errs []error
	for i, ef := range f.Entities {
		e := ef.toEntity()
		if e.Name == "" {
			e.Name = fmt.Sprintf("entities[%d]", i)
		}
		if err := m.Add(e); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return m, nil
}

func (ef EntityFile) toEntity() *pgbulk.EntityType {
	e := &pgbulk.EntityType{
		Name:   ef.Name,
		Table:  ef.Table,
		Schema: ef.Schema,
	}
	if e.Table == "" {
		e.Table = ef.Name
	}
	for _, pf := range ef.Properties {
		p := &pgbulk.Property{
			Name:       pf.Name,
			Column:     pf.Column,
			ColumnType: pf.Type,
			PrimaryKey: pf.PrimaryKey,
			Nullable:   !pf.PrimaryKey,
		}
		if p.Column == "" {
			p.Column = pf.Name
		}
		if pf.Nullable != nil {
			p.Nullable = *pf.Nullable
		}
		e.Properties = append(e.Properties, p)
	}
	return e
}
