package topic

import "errors"

var ErrTopicRequired = errors.New("topic name is required")
var ErrSchemaPathRequired = errors.New("schema path is required")
var ErrInvalidTopicName = errors.New("invalid topic name")
var ErrSchemaInvalidJSON = errors.New("schema is not valid JSON")
