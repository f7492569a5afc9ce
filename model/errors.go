package model

import "errors"

// Failure taxonomy. Recovery is always "degrade and report", never retry.
var (
	// ErrTemplateNotFound: the id or its backing file is gone.
	ErrTemplateNotFound = errors.New("template not found")
	// ErrTemplateUnreadable: the document does not parse. Extraction degrades
	// to an empty set; filling must propagate this.
	ErrTemplateUnreadable = errors.New("template unreadable")
	// ErrConversionFailed: the external PDF step failed. The Word artifact is
	// still returned.
	ErrConversionFailed = errors.New("pdf conversion failed")
	// ErrRemoteFetch: auto-provisioning from the remote source failed. Fatal
	// to the request that triggered it.
	ErrRemoteFetch = errors.New("remote template fetch failed")
)
