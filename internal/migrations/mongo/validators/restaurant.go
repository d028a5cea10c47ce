package validators

import "go.mongodb.org/mongo-driver/bson"

var RestaurantValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"max_capacity",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"timezone": bson.M{
				"bsonType": "string",
			},

			"max_capacity": bson.M{
				"bsonType": "int",
				"minimum":  1,
				"maximum":  1000,
			},

			"slot_interval_min": bson.M{
				"bsonType": "int",
				"minimum":  5,
				"maximum":  120,
			},

			"default_session_len_min": bson.M{
				"bsonType": "int",
				"minimum":  15,
				"maximum":  480,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
