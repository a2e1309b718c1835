/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package biomarker

// Config holds engine options.
type Config struct {
	// Workers bounds how many rows are normalized concurrently. Values
	// below 1 are treated as 1.
	Workers int
	// DefaultProfile is used when a subject names no profile.
	DefaultProfile string
	// FuzzyMatching appends the fuzzy tier to the matcher chain.
	FuzzyMatching bool
	// FuzzyMinScore is the lowest fuzzy score accepted as a match.
	FuzzyMinScore int
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		Workers:        4,
		DefaultProfile: DefaultProfileName,
		FuzzyMatching:  false,
		FuzzyMinScore:  10,
	}
}

func (c Config) workers() int {
	if c.Workers < 1 {
		return 1
	}

	return c.Workers
}
