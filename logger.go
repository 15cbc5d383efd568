package redisdns

import "github.com/sirupsen/logrus"

// Log is the package-level logger used by every component. Callers set
// its level and output from the CLI; the library defaults to logging at
// info level to stderr.
var Log = logrus.New()
