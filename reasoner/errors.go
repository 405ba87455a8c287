package reasoner

import "errors"

var errNoInputLayer = errors.New("reasoner: no Input layer registered")
