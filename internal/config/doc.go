// Package config loads and validates the TOML configuration tree.
//
// The file has two layers: typed top-level settings (input path, workspace,
// logging, the ordered component list) and free-form component tables keyed
// by [component_type.component_name]. Root-level scalar keys act as
// pipeline-wide defaults: every component inherits them unless its own table
// shadows the key. DecodeComponent materializes that merged view into a
// component's typed settings struct at construction time.
//
// String values may reference root-level string keys with {{key}}
// placeholders, which are expanded during Load.
package config
