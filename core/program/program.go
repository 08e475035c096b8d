package program

import (
	"math"
	"time"
)

type Program struct {
	ID              string    `json:"id" db:"program_id"`
	Title           string    `json:"title" db:"title"`
	Subtitle        string    `json:"subtitle" db:"subtitle"`
	Description     string    `json:"description" db:"description"`
	ImageURL        string    `json:"imageUrl" db:"image_url"`
	Duration        string    `json:"duration" db:"duration"`
	Level           string    `json:"level" db:"level"`
	Category        string    `json:"category" db:"category"`
	MaxParticipants int       `json:"maxParticipants" db:"max_participants"`
	Price           int       `json:"price" db:"price"`
	EnrollmentCount int       `json:"enrollmentCount" db:"enrollment_count"`
	RatingAverage   float64   `json:"ratingAverage" db:"rating_average"`
	RatingCount     int       `json:"ratingCount" db:"rating_count"`
	Active          bool      `json:"active" db:"active"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
	Version         int       `json:"-" db:"version"`
}

type ProgramNew struct {
	Title           string `json:"title" validate:"required"`
	Subtitle        string `json:"subtitle"`
	Description     string `json:"description" validate:"required"`
	ImageURL        string `json:"imageUrl" validate:"required"`
	Duration        string `json:"duration" validate:"required"`
	Level           string `json:"level" validate:"required,oneof=Beginner Intermediate Advanced 'All Levels' Customized"`
	Category        string `json:"category" validate:"required,oneof=strength cardio flexibility group personal specialized"`
	MaxParticipants int    `json:"maxParticipants" validate:"gte=0"`
	Price           int    `json:"price" validate:"gte=0"`
}

type ProgramUp struct {
	Title           *string `json:"title"`
	Subtitle        *string `json:"subtitle"`
	Description     *string `json:"description"`
	ImageURL        *string `json:"imageUrl"`
	Duration        *string `json:"duration"`
	Level           *string `json:"level" validate:"omitempty,oneof=Beginner Intermediate Advanced 'All Levels' Customized"`
	Category        *string `json:"category" validate:"omitempty,oneof=strength cardio flexibility group personal specialized"`
	MaxParticipants *int    `json:"maxParticipants" validate:"omitempty,gte=0"`
	Price           *int    `json:"price" validate:"omitempty,gte=0"`
	Active          *bool   `json:"active"`
}

type Schedule struct {
	ProgramID string `json:"-" db:"program_id"`
	Day       string `json:"day" db:"day"`
	StartTime string `json:"time" db:"start_time"`
	Spots     int    `json:"spots" db:"spots"`
	Kind      string `json:"type" db:"kind"`
	Focus     string `json:"focus" db:"focus"`
	Available bool   `json:"isAvailable" db:"available"`
}

type Review struct {
	ID        string    `json:"id" db:"review_id"`
	ProgramID string    `json:"programId" db:"program_id"`
	UserID    string    `json:"userId" db:"user_id"`
	Rating    int       `json:"rating" db:"rating"`
	Comment   string    `json:"comment" db:"comment"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type ReviewNew struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment"`
}

// aggregate folds review ratings into the stored rating fields.
// The average is the plain mean rounded to one decimal; an empty
// review list yields the zero aggregate.
func aggregate(ratings []int) (average float64, count int) {
	if len(ratings) == 0 {
		return 0, 0
	}

	sum := 0
	for _, r := range ratings {
		sum += r
	}

	average = math.Round(float64(sum)/float64(len(ratings))*10) / 10
	return average, len(ratings)
}
