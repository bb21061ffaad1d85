//go:build !race

package filesearch

const raceEnabled = false
