// Package config loads blocklane settings.
//
// Settings are layered, later layers overriding earlier ones:
//
//  1. built-in defaults (Default)
//  2. a TOML file, which may pull in others with "@include"
//  3. BLOCKLANE_* environment variables
//
// A minimal file:
//
//	[index]
//	block_capacity = 128
//	leveling = "deterministic"
//	node_limit = 1000000
//
//	[history]
//	max_undo = 500
//
//	[logging]
//	level = "debug"
//	encoding = "console"
//
// The mapped environment variables are BLOCKLANE_BLOCK_CAPACITY,
// BLOCKLANE_MAX_LEVELS, BLOCKLANE_LEVELING, BLOCKLANE_SEED,
// BLOCKLANE_NODE_LIMIT, BLOCKLANE_MAX_UNDO and BLOCKLANE_LOG_LEVEL. Any other
// BLOCKLANE_<SECTION>_<KEY> variable sets section.key directly.
//
// Load validates the result; every validation failure matches
// ErrInvalidConfig with errors.Is.
package config
