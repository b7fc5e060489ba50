// Package config loads, normalizes, and validates opacsplice configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files from an explicit path, the user config
// directory, or the working directory. The Config type centralizes every
// knob a splice run needs: source table locations, the requested
// composition, the splice band, the oracle program, the response cache, and
// logging.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
