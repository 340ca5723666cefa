//go:build !unix && !windows

package fsx

func isCrossDevice(err error) bool { return false }
