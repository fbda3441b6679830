package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"event_id",
			"parent_id",
			"child_id",
			"teacher_id",
			"start_time",
			"end_time",
			"status",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"event_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"parent_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"child_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"teacher_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"start_time": bson.M{
				"bsonType": "date",
			},

			"end_time": bson.M{
				"bsonType": "date",
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"confirmed",
					"pending",
					"cancelled",
					"missed",
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
