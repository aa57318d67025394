package abi

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Product is the full L2 CMIP product name as it appears in object names.
type Product string

const (
	FullDisk         Product = "L2-CMIPF"
	MesoscaleSector1 Product = "L2-CMIPM1"
	MesoscaleSector2 Product = "L2-CMIPM2"
)

func ParseProduct(s string) (Product, error) {
	switch Product(s) {
	case FullDisk, MesoscaleSector1, MesoscaleSector2:
		return Product(s), nil
	}
	switch strings.ToLower(s) {
	case "fulldisk", "full-disk", "f":
		return FullDisk, nil
	case "meso1", "m1":
		return MesoscaleSector1, nil
	case "meso2", "m2":
		return MesoscaleSector2, nil
	}
	return "", fmt.Errorf("unknown product %q (valid: %s, %s, %s)", s, FullDisk, MesoscaleSector1, MesoscaleSector2)
}

// IsFullDisk reports whether files of this product are cropped to a region on download.
func (p Product) IsFullDisk() bool {
	return p == FullDisk
}

// Family strips the mesoscale sector number. Bucket prefixes and local directories use it.
func (p Product) Family() string {
	if p.IsFullDisk() {
		return string(p)
	}
	return strings.TrimRight(string(p), "12")
}

// DayOfYear returns the 1-based ordinal day used in bucket paths and scan start stamps.
func DayOfYear(t time.Time) int {
	return t.YearDay()
}

// ObjectPrefix is the bucket directory holding all files of one product hour.
func ObjectPrefix(p Product, t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("ABI-%s/%04d/%03d/%02d/", p.Family(), t.Year(), DayOfYear(t), t.Hour())
}

// ObjectPattern matches the base name of the object for one band and scan start minute.
func ObjectPattern(p Product, band int, t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("*%s-M6C%02d_G16_s%04d%03d%02d%02d*", p, band, t.Year(), DayOfYear(t), t.Hour(), t.Minute())
}

// MatchObjects filters bucket keys by ObjectPattern applied to their base names.
func MatchObjects(keys []string, pattern string) []string {
	var matched []string
	for _, key := range keys {
		ok, err := filepath.Match(pattern, path.Base(key))
		if err == nil && ok {
			matched = append(matched, key)
		}
	}
	return matched
}

// LocalName is the object base name without the operational "OR_" prefix.
func LocalName(key string) string {
	return strings.TrimPrefix(path.Base(key), "OR_")
}

// RegionFileName derives the name of a region-cropped file from a full-disk file name.
func RegionFileName(name string, region Region) string {
	return strings.TrimSuffix(name, ".nc") + "_region-" + string(region) + ".nc"
}

// ExpectedSuffix is the file name ending of a successfully acquired file.
func ExpectedSuffix(p Product, region Region) string {
	if p.IsFullDisk() {
		return "region-" + string(region) + ".nc"
	}
	return ".nc"
}

// LocalPattern matches an acquired file inside a band directory.
func LocalPattern(p Product, band int, t time.Time, region Region) string {
	t = t.UTC()
	base := fmt.Sprintf("*%s-M6C%02d_G16_s%04d%03d%02d%02d*", p, band, t.Year(), DayOfYear(t), t.Hour(), t.Minute())
	if p.IsFullDisk() {
		return base + "region-" + string(region) + ".nc"
	}
	return base + ".nc"
}

// BandDir is the band-numbered subdirectory of a product data directory.
func BandDir(band int) string {
	return fmt.Sprintf("b%02d", band)
}

// MatchLocal reports whether a local file name matches a LocalPattern.
func MatchLocal(pattern, name string) (bool, error) {
	return filepath.Match(pattern, name)
}
