package domain

import (
	"path/filepath"
	"strings"
)

const (
	// CurrentFileExt is the extension of the always-current snapshot file.
	CurrentFileExt = ".json"

	// HistoryFileExt is the extension of the compressed history log.
	HistoryFileExt = ".histories"

	// RootDataFileExt is the extension of the compressed root data file.
	RootDataFileExt = ".json"

	// DefaultConfigFile is the configuration file looked up in the working directory.
	DefaultConfigFile = "snapkeep.yaml"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// FileSymbol strips every slash from a trading symbol, so "BTC/USDT" becomes "BTCUSDT".
func FileSymbol(symbol string) string {
	return strings.ReplaceAll(symbol, "/", "")
}

// CurrentFilePath returns the path of the current snapshot file for symbol under dir.
func CurrentFilePath(dir, symbol string) string {
	return filepath.Join(dir, FileSymbol(symbol)+CurrentFileExt)
}

// HistoryFilePath returns the path of the history log that sits next to the current file.
func HistoryFilePath(currentFile string) string {
	base := strings.TrimSuffix(filepath.Base(currentFile), CurrentFileExt)
	return filepath.Join(filepath.Dir(currentFile), base+HistoryFileExt)
}

// RootDataFilePath returns the path of the root data file for symbol and timeframe.
func RootDataFilePath(root, timeframe, symbol string) string {
	return filepath.Join(root, timeframe, FileSymbol(symbol)+RootDataFileExt)
}
