package status

import "encoding/json"

//Status represents audio processing outcome status
type Status int

const (
	// Processed - transcription and summary are ready
	Processed Status = iota + 1
	// Failed - item failed, error is set
	Failed
)

var (
	statusName = map[Status]string{Processed: "processed", Failed: "failed"}
	nameStatus = map[string]Status{"processed": Processed, "failed": Failed}
)

func (st Status) String() string {
	return statusName[st]
}

// MarshalJSON writes status as its name
func (st Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(st.String())
}

// UnmarshalJSON reads status from its name
func (st *Status) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*st = From(s)
	return nil
}

// From returns status obj from string
func From(st string) Status {
	return nameStatus[st]
}
