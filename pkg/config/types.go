package config

type BookingStrategy string

const (
	Optimistic  BookingStrategy = "optimistic"
	Pessimistic BookingStrategy = "pessimistic"
)

type TimeValidator string

const (
	FullHour     TimeValidator = "full_hour"
	DurationGrid TimeValidator = "duration_grid"
)

type StoreBackend string

const (
	MemoryBackend StoreBackend = "memory"
	MongoBackend  StoreBackend = "mongo"
)
