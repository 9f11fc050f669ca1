package domain

import (
	"fmt"
	"time"
)

type SeatClass string

const (
	SeatClassEconomy  SeatClass = "economy"
	SeatClassBusiness SeatClass = "business"
	SeatClassFirst    SeatClass = "first_class"
)

var SeatClasses = []SeatClass{SeatClassEconomy, SeatClassBusiness, SeatClassFirst}

func (c SeatClass) Valid() bool {
	switch c {
	case SeatClassEconomy, SeatClassBusiness, SeatClassFirst:
		return true
	}
	return false
}

type FlightStatus string

const (
	FlightStatusScheduled FlightStatus = "scheduled"
	FlightStatusBoarding  FlightStatus = "boarding"
	FlightStatusDeparted  FlightStatus = "departed"
	FlightStatusDelayed   FlightStatus = "delayed"
	FlightStatusCancelled FlightStatus = "cancelled"
)

func (s FlightStatus) Valid() bool {
	switch s {
	case FlightStatusScheduled, FlightStatusBoarding, FlightStatusDeparted, FlightStatusDelayed, FlightStatusCancelled:
		return true
	}
	return false
}

// ClassSeats holds one counter per seat class.
type ClassSeats struct {
	Economy    int `json:"economy"`
	Business   int `json:"business"`
	FirstClass int `json:"first_class"`
}

func (s ClassSeats) Get(c SeatClass) int {
	switch c {
	case SeatClassEconomy:
		return s.Economy
	case SeatClassBusiness:
		return s.Business
	case SeatClassFirst:
		return s.FirstClass
	}
	return 0
}

func (s *ClassSeats) Set(c SeatClass, n int) {
	switch c {
	case SeatClassEconomy:
		s.Economy = n
	case SeatClassBusiness:
		s.Business = n
	case SeatClassFirst:
		s.FirstClass = n
	}
}

func (s ClassSeats) Total() int {
	return s.Economy + s.Business + s.FirstClass
}

type Flight struct {
	ID                 int64        `json:"id"`
	FlightNumber       string       `json:"flight_number"`
	AirplaneID         int64        `json:"airplane_id"`
	DepartureAirportID int64        `json:"departure_airport_id"`
	ArrivalAirportID   int64        `json:"arrival_airport_id"`
	DepartureTime      time.Time    `json:"departure_time"`
	ArrivalTime        time.Time    `json:"arrival_time"`
	Status             FlightStatus `json:"status"`
	Capacity           ClassSeats   `json:"capacity"`
	Available          ClassSeats   `json:"available"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

// Bookable reports whether new orders may target the flight at the given time.
func (f *Flight) Bookable(now time.Time) error {
	switch f.Status {
	case FlightStatusScheduled, FlightStatusDelayed:
	default:
		return NewValidationError("flight_id", fmt.Sprintf("flight %s is %s", f.FlightNumber, f.Status))
	}
	if !f.DepartureTime.After(now) {
		return NewValidationError("flight_id", fmt.Sprintf("flight %s has already departed", f.FlightNumber))
	}
	return nil
}

// Duration is the scheduled block time.
func (f *Flight) Duration() time.Duration {
	return f.ArrivalTime.Sub(f.DepartureTime)
}
