package extractor

import (
	"fmt"
	"path/filepath"

	"github.com/google/osv-scalibr/extractor/filesystem"
	"github.com/google/osv-scalibr/extractor/filesystem/language/javascript/bunlock"
	"github.com/google/osv-scalibr/extractor/filesystem/language/javascript/packagelockjson"
	"github.com/google/osv-scalibr/extractor/filesystem/language/javascript/pnpmlock"
)

const (
	NpmLockfile  = "package-lock.json"
	PnpmLockfile = "pnpm-lock.yaml"
	BunLockfile  = "bun.lock"
)

// SupportedLockfiles lists the lockfile names ExtractLockfile can read.
func SupportedLockfiles() []string {
	return []string{NpmLockfile, PnpmLockfile, BunLockfile}
}

func getExtractorForFile(filename string) (filesystem.Extractor, error) {
	filename = filepath.Base(filename)
	switch filename {
	case NpmLockfile:
		return packagelockjson.NewDefault(), nil
	case PnpmLockfile:
		return pnpmlock.New(), nil
	case BunLockfile:
		return bunlock.New(), nil
	default:
		return nil, fmt.Errorf("unsupported lockfile type: %s", filename)
	}
}
