package validators

import "go.mongodb.org/mongo-driver/bson"

var UserValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"name", "role"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":  bson.M{"bsonType": "string", "minLength": 1},
			"name": bson.M{"bsonType": "string", "minLength": 1, "maxLength": 200},
			"role": bson.M{
				"bsonType": "string",
				"enum":     []string{"parent", "teacher", "admin"},
			},
			"child_ids": bson.M{
				"bsonType": "array",
				"items":    bson.M{"bsonType": "string"},
			},
		},
	},
}

var ChildValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"name"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":      bson.M{"bsonType": "string", "minLength": 1},
			"name":     bson.M{"bsonType": "string", "minLength": 1, "maxLength": 200},
			"class_id": bson.M{"bsonType": "string"},
		},
	},
}

var EventValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"title", "date", "type"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":   bson.M{"bsonType": "string", "minLength": 1},
			"title": bson.M{"bsonType": "string", "minLength": 1, "maxLength": 200},
			"date":  bson.M{"bsonType": "date"},
			"type": bson.M{
				"bsonType": "string",
				"enum":     []string{"OpenDay", "ParentTeacherMeeting", "SpecialActivity"},
			},
			"slots": bson.M{
				"bsonType": []string{"array", "null"},
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"teacher_id", "start_time"},
					"properties": bson.M{
						"teacher_id": bson.M{"bsonType": "string", "minLength": 1},
						"start_time": bson.M{"bsonType": "date"},
					},
				},
			},
		},
	},
}
