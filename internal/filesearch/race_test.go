//go:build race

package filesearch

const raceEnabled = true
