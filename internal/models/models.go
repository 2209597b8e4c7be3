package models

import "time"

// Role is the account type of a user
type Role string

const (
	RoleAdopter Role = "Adopter"
	RoleRehomer Role = "Rehomer"
	RoleAdmin   Role = "Admin"
)

// OnlineStatus tracks user presence
type OnlineStatus struct {
	IsOnline bool       `json:"isOnline" bson:"is_online"`
	LastSeen *time.Time `json:"lastSeen,omitempty" bson:"last_seen,omitempty"`
}

// User represents an account in the system
type User struct {
	ID           string       `json:"id" bson:"_id" validate:"required"`
	FirstName    string       `json:"firstName" bson:"first_name" validate:"required,max=100"`
	LastName     string       `json:"lastName" bson:"last_name" validate:"required,max=100"`
	Email        string       `json:"email" bson:"email" validate:"required,email"`
	PasswordHash string       `json:"-" bson:"password_hash" validate:"required"`
	Role         Role         `json:"role" bson:"role" validate:"required,oneof=Adopter Rehomer Admin"`
	CreatedAt    time.Time    `json:"createdAt" bson:"created_at"`
	PhotoURL     *string      `json:"photoUrl,omitempty" bson:"photo_url,omitempty" validate:"omitempty,url"`
	OnlineStatus OnlineStatus `json:"onlineStatus" bson:"online_status"`
}

// LivingSituation describes tenure of the adopter's home
type LivingSituation string

const (
	LivingRented LivingSituation = "rented"
	LivingOwn    LivingSituation = "own"
	LivingOther  LivingSituation = "other"
)

// HouseholdSetting describes where the adopter's home is
type HouseholdSetting string

const (
	SettingRural HouseholdSetting = "rural"
	SettingTown  HouseholdSetting = "town"
	SettingCity  HouseholdSetting = "city"
)

// ActivityLevel describes how busy the household is
type ActivityLevel string

const (
	ActivityQuiet  ActivityLevel = "quiet"
	ActivityNormal ActivityLevel = "normal"
	ActivityLoud   ActivityLevel = "loud"
)

// Address is the adopter's postal address
type Address struct {
	AddressLine1      string `json:"addressLine1" bson:"address_line1" validate:"required"`
	AddressLine2      string `json:"addressLine2,omitempty" bson:"address_line2,omitempty"`
	Town              string `json:"town" bson:"town" validate:"required"`
	PinCode           string `json:"pinCode" bson:"pin_code" validate:"required,numeric"`
	MobileOrTelephone string `json:"mobileOrTelephone" bson:"mobile_or_telephone" validate:"required"`
}

// VisitingChild is a child who regularly visits the home
type VisitingChild struct {
	Age int `json:"age" bson:"age" validate:"min=0,max=17"`
}

// OtherAnimal describes a pet already living with the adopter
type OtherAnimal struct {
	Nurtured   bool   `json:"nurtured" bson:"nurtured"`
	Vaccinated bool   `json:"vaccinated" bson:"vaccinated"`
	Type       string `json:"type,omitempty" bson:"type,omitempty"`
}

// AdoptionUserDetails is the eligibility intake of a user, one per user.
// Pointer booleans are required declarations: absent is not the same as false.
type AdoptionUserDetails struct {
	ID                         string           `json:"id" bson:"_id" validate:"required"`
	UserID                     string           `json:"userId" bson:"user_id" validate:"required"`
	Address                    Address          `json:"address" bson:"address"`
	Above18                    *bool            `json:"above18" bson:"above18" validate:"required"`
	LivingSituation            LivingSituation  `json:"livingSituation" bson:"living_situation" validate:"required,oneof=rented own other"`
	GardenAvailable            *bool            `json:"gardenAvailable" bson:"garden_available" validate:"required"`
	HouseholdSetting           HouseholdSetting `json:"householdSetting" bson:"household_setting" validate:"required,oneof=rural town city"`
	ActivityLevel              ActivityLevel    `json:"activityLevel" bson:"activity_level" validate:"required,oneof=quiet normal loud"`
	HomeImages                 []string         `json:"homeImages" bson:"home_images" validate:"required,min=1,dive,url"`
	NoOfAdults                 int              `json:"noOfAdults" bson:"no_of_adults" validate:"min=1"`
	NoOfChildren               int              `json:"noOfChildren" bson:"no_of_children" validate:"min=0"`
	VisitingChildren           []VisitingChild  `json:"visitingChildren" bson:"visiting_children" validate:"dive"`
	AnyoneAllergicToPets       *bool            `json:"anyoneAllergicToPets" bson:"anyone_allergic_to_pets" validate:"required"`
	AnotherAnimal              *OtherAnimal     `json:"anotherAnimal,omitempty" bson:"another_animal,omitempty"`
	LifestylePatterns          string           `json:"lifestylePatterns" bson:"lifestyle_patterns" validate:"required,max=200"`
	PlanningToMoveIn6Months    *bool            `json:"planningToMoveIn6Months" bson:"planning_to_move_in_6_months" validate:"required"`
	HolidayInNext3Months       *bool            `json:"holidayInNext3Months" bson:"holiday_in_next_3_months" validate:"required"`
	SuitableTransportForAnimal *bool            `json:"suitableTransportForAnimal" bson:"suitable_transport_for_animal" validate:"required"`
	ExperienceWithAnimals      string           `json:"experienceWithAnimals" bson:"experience_with_animals" validate:"required"`
	CreatedAt                  time.Time        `json:"createdAt" bson:"created_at"`
}

// PetStatus is the workflow state of a listing
type PetStatus string

const (
	PetPending  PetStatus = "pending"
	PetApproved PetStatus = "approved"
	PetAdopted  PetStatus = "adopted"
)

// CanTransition reports whether a listing may move from one status to another.
// The only legal path is pending -> approved -> adopted; adopted is terminal.
func CanTransition(from, to PetStatus) bool {
	switch from {
	case PetPending:
		return to == PetApproved
	case PetApproved:
		return to == PetAdopted
	}
	return false
}

// Pet represents a listing created by a rehomer
type Pet struct {
	ID              string    `json:"id" bson:"_id" validate:"required"`
	Name            string    `json:"name" bson:"name" validate:"required,max=50"`
	Species         string    `json:"species" bson:"species" validate:"required"`
	Age             int       `json:"age" bson:"age" validate:"min=0,max=100"`
	Characteristics string    `json:"characteristics,omitempty" bson:"characteristics,omitempty"`
	Status          PetStatus `json:"status" bson:"status" validate:"required,oneof=pending adopted approved"`
	CreatedAt       time.Time `json:"createdAt" bson:"created_at"`
	Breed           string    `json:"breed,omitempty" bson:"breed,omitempty"`
	DonorID         string    `json:"donorId" bson:"donor_id" validate:"required"`
	Size            string    `json:"size,omitempty" bson:"size,omitempty"`
	RehomeReasons   string    `json:"rehomeReasons,omitempty" bson:"rehome_reasons,omitempty"`
	Location        string    `json:"location" bson:"location" validate:"required"`
	Color           string    `json:"color,omitempty" bson:"color,omitempty"`
	PhotoURL        *string   `json:"photoUrl,omitempty" bson:"photo_url,omitempty" validate:"omitempty,url"`
}

// PetFeatures holds temperament and care flags of a pet, one per pet
type PetFeatures struct {
	ID                   string `json:"id" bson:"_id" validate:"required"`
	PetID                string `json:"petId" bson:"pet_id" validate:"required"`
	Description          string `json:"description,omitempty" bson:"description,omitempty" validate:"max=250"`
	LiveWithChildren     bool   `json:"liveWithChildren" bson:"live_with_children"`
	Microchipped         bool   `json:"microchipped" bson:"microchipped"`
	HouseTrained         bool   `json:"houseTrained" bson:"house_trained"`
	HasBehaviouralIssues bool   `json:"hasBehaviouralIssues" bson:"has_behavioural_issues"`
	LiveWithDogs         bool   `json:"liveWithDogs" bson:"live_with_dogs"`
	ShotsUpToDate        bool   `json:"shotsUpToDate" bson:"shots_up_to_date"`
	LiveWithCats         bool   `json:"liveWithCats" bson:"live_with_cats"`
	SpayedOrNeutered     bool   `json:"spayedOrNeutered" bson:"spayed_or_neutered"`
}

// Conversation is a message thread between users
type Conversation struct {
	ID            string    `json:"id" bson:"_id" validate:"required"`
	Participants  []string  `json:"participants" bson:"participants" validate:"min=2,unique,dive,required"`
	IsApproved    bool      `json:"isApproved" bson:"is_approved"`
	LastMessageAt time.Time `json:"lastMessageAt" bson:"last_message_at"`
	CreatedAt     time.Time `json:"createdAt" bson:"created_at"`
}

// HasParticipant reports whether userID takes part in the conversation
func (c *Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// Attachments are optional links carried by a message
type Attachments struct {
	URLs      []string `json:"urls" bson:"urls" validate:"dive,url"`
	Photos    []string `json:"photos" bson:"photos" validate:"dive,url"`
	Documents []string `json:"documents" bson:"documents" validate:"dive,url"`
}

// DeliveryStatus records when a message was sent, delivered and read
type DeliveryStatus struct {
	Sent      time.Time  `json:"sent" bson:"sent"`
	Delivered *time.Time `json:"delivered,omitempty" bson:"delivered,omitempty"`
	Read      *time.Time `json:"read,omitempty" bson:"read,omitempty"`
}

// Message is a single entry in a conversation
type Message struct {
	ID             string         `json:"id" bson:"_id" validate:"required"`
	ConversationID string         `json:"conversationId" bson:"conversation_id" validate:"required"`
	SenderID       string         `json:"senderId" bson:"sender_id" validate:"required"`
	Content        string         `json:"content" bson:"content" validate:"required,max=5000"`
	Attachments    Attachments    `json:"attachments" bson:"attachments"`
	Status         DeliveryStatus `json:"status" bson:"status"`
	SentAt         time.Time      `json:"sentAt" bson:"sent_at"`
	UpdatedAt      time.Time      `json:"updatedAt" bson:"updated_at"`
}

// ReportStatus is the moderation outcome of a report. A report without a
// status is still open.
type ReportStatus string

const (
	ReportResolved ReportStatus = "resolved"
	ReportRejected ReportStatus = "rejected"
)

// Report is a moderation complaint raised by a user about a pet
type Report struct {
	ID            string        `json:"id" bson:"_id" validate:"required"`
	UserID        string        `json:"userId" bson:"user_id" validate:"required"`
	PetID         string        `json:"petId" bson:"pet_id" validate:"required"`
	ReportType    string        `json:"reportType" bson:"report_type" validate:"required,max=100"`
	ReportContext string        `json:"reportContext,omitempty" bson:"report_context,omitempty" validate:"max=2000"`
	Status        *ReportStatus `json:"status,omitempty" bson:"status,omitempty" validate:"omitempty,oneof=resolved rejected"`
	Date          time.Time     `json:"date" bson:"date"`
}

// AdoptionDetails is the terminal record of an adoption
type AdoptionDetails struct {
	ID        string    `json:"id" bson:"_id" validate:"required"`
	UserID    string    `json:"userId" bson:"user_id" validate:"required"`
	PetID     string    `json:"petId" bson:"pet_id" validate:"required"`
	ReportID  string    `json:"reportId" bson:"report_id" validate:"required"`
	DonorID   string    `json:"donorId" bson:"donor_id" validate:"required,nefield=UserID"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}
