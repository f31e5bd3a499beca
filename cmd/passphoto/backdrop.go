//go:build gocv

package main

import "github.com/autopassphoto/passphoto/pkg/segment"

func init() {
	segmenters["backdrop"] = func() segment.Segmenter { return segment.Backdrop{} }
}
