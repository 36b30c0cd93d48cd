package main

import (
	"time"

	"github.com/odvcencio/graft/pkg/historyengine"
	"github.com/odvcencio/graft/pkg/object"
)

func openEngine() (*historyengine.Engine, error) {
	return historyengine.Open(".")
}

func currentCommitter(e *historyengine.Engine) (object.Identity, error) {
	now := time.Now()
	return e.CurrentCommitter(now.Unix(), now.Format("-0700"))
}

func shortHash(h object.Hash) string {
	s := string(h)
	if len(s) > 10 {
		return s[:10]
	}
	return s
}
