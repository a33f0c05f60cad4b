package tasks

import (
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "tasks.schema.json"

// SchemaJSON describes the persisted task list.
const SchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "todo", "isCompleted", "createdAt"],
    "properties": {
      "id":          {"type": "string", "minLength": 1},
      "todo":        {"type": "string"},
      "isCompleted": {"type": "boolean"},
      "createdAt":   {"type": "number"}
    }
  }
}`

// Schema is the compiled form of SchemaJSON.
var Schema = jsonschema.MustCompileString(schemaURL, SchemaJSON)
