// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

// Package repo locates and opens the indexer's on-disk state: the badger
// state store and the envelope journal, both under one base directory.
package repo

import (
	"os"
	"path/filepath"
)

// Interface resolves paths inside a repo directory.
type Interface interface {
	GetPath(rel ...string) string
}

type repo struct {
	basePath string
}

// New creates a repo value at basePath. Directories are created lazily
// by the open helpers.
func New(basePath string) Interface {
	return repo{basePath: basePath}
}

func (r repo) GetPath(rel ...string) string {
	return filepath.Join(append([]string{r.basePath}, rel...)...)
}

func mkdirFor(p string) error {
	return os.MkdirAll(p, 0700)
}
