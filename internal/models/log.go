package models

import "time"

// LogEntry is a single append-only activity record. The same shape is used
// for the Postgres table and the MongoDB collection.
type LogEntry struct {
	ID        string    `json:"id"         bson:"_id"`
	Username  string    `json:"username"   bson:"username"`
	Action    string    `json:"action"     bson:"action"`
	Details   string    `json:"details"    bson:"details"`
	Timestamp time.Time `json:"timestamp"  bson:"timestamp"`
	IPAddress string    `json:"ip_address" bson:"ip_address"`
	Device    string    `json:"device"     bson:"device"`
}

// CollectLogRequest is the JSON body for POST /collect-log. Every field is
// optional; missing values are stored as empty strings.
type CollectLogRequest struct {
	Username  string `json:"username"`
	Action    string `json:"action"`
	Details   string `json:"details"`
	IPAddress string `json:"ip_address"`
	Device    string `json:"device"`
}
