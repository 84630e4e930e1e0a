package pipeline

import "errors"

var errInvalidVariants = errors.New("group must carry between 2 and 4 variants")
