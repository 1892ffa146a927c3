package genres

import "go.mongodb.org/mongo-driver/bson/primitive"

// Genre is a fixed taxonomy entry referenced by books
type Genre struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name string             `bson:"name" json:"name"`
}

// Defaults is the taxonomy seeded into an empty collection at startup
var Defaults = []string{
	"Fiction",
	"Non-Fiction",
	"Mystery",
	"Thriller",
	"Fantasy",
	"Science Fiction",
	"Romance",
	"Historical Fiction",
	"Biography",
	"Autobiography",
	"Self-Help",
	"Graphic Novel",
	"Horror",
	"Young Adult",
	"Children's Literature",
	"Poetry",
	"Drama",
	"Adventure",
	"Dystopian",
	"Classic",
	"Cooking",
	"Travel",
	"Health & Fitness",
	"Science",
	"Religion",
	"Philosophy",
	"Humor",
	"Business",
	"Technology",
	"Education",
	"True Crime",
	"Memoir",
	"Art",
	"Music",
	"Sports",
	"Parenting",
	"Politics",
	"Psychology",
	"Spirituality",
}
