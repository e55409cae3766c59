package validation

import (
	"github.com/imkonsowa/nearme-nli/models"
)

func idList() map[string]interface{} {
	return map[string]interface{}{
		"type":     "array",
		"minItems": 1,
		"items": map[string]interface{}{
			"type":    "integer",
			"minimum": 0,
		},
	}
}

func definitions() map[string]interface{} {
	return map[string]interface{}{
		"values": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				string(models.KeyLocationType): idList(),
				string(models.KeySubtype):      idList(),
				string(models.KeyPriceRange): map[string]interface{}{
					"type":     "array",
					"minItems": 2,
					"maxItems": 2,
					"items": map[string]interface{}{
						"type":    "integer",
						"minimum": 0,
					},
				},
				string(models.KeyParking): map[string]interface{}{
					"type":        "array",
					"minItems":    1,
					"uniqueItems": true,
					"items": map[string]interface{}{
						"type": "string",
						"enum": []interface{}{models.ParkingSpaces, models.ParkingSpacesWithCharging},
					},
				},
				string(models.KeyMyLocations): map[string]interface{}{
					"type":     "array",
					"minItems": 1,
					"maxItems": 1,
					"items": map[string]interface{}{
						"type": "integer",
						"enum": []interface{}{models.MyLocationsID},
					},
				},
			},
			"additionalProperties": false,
		},
		"group": map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"or", "and"},
			"properties": map[string]interface{}{
				"or":  map[string]interface{}{"$ref": "#/definitions/values"},
				"and": map[string]interface{}{"$ref": "#/definitions/values"},
			},
			"additionalProperties": false,
		},
		"filter": map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"version", "include", "exclude"},
			"properties": map[string]interface{}{
				"version": map[string]interface{}{
					"type": "integer",
					"enum": []interface{}{models.FilterVersion},
				},
				"include": map[string]interface{}{"$ref": "#/definitions/group"},
				"exclude": map[string]interface{}{"$ref": "#/definitions/group"},
			},
			"additionalProperties": false,
		},
		"envelope": map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"current", "saved"},
			"properties": map[string]interface{}{
				"current": map[string]interface{}{"$ref": "#/definitions/filter"},
				"saved":   map[string]interface{}{"type": "array"},
			},
			"additionalProperties": false,
		},
	}
}

// SchemaFor returns the JSON Schema (draft-07) of one output mode.
func SchemaFor(mode models.OutputMode) map[string]interface{} {
	root := "#/definitions/filter"
	if mode == models.ModeEnvelope {
		root = "#/definitions/envelope"
	}

	return map[string]interface{}{
		"$schema":     "http://json-schema.org/draft-07/schema#",
		"title":       "NearMe filter (" + string(mode) + ")",
		"definitions": definitions(),
		"allOf": []interface{}{
			map[string]interface{}{"$ref": root},
		},
	}
}
