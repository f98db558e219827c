package mongo

import "errors"

var ErrFailedToConnect = errors.New("mongo.errors.failed_to_connect")
