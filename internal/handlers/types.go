package handlers

import "time"

// IndexResponse is served on the root route: either a configured message or
// a redirect to a configured link.
type IndexResponse struct {
	Status  int
	Headers struct {
		Location string `doc:"Redirect target when an index link is configured" header:"Location"`
	}
	Body struct {
		Message string `doc:"Service index message" json:"message,omitempty"`
	}
}

// CreatePasteRequest creates a paste under a generated id.
type CreatePasteRequest struct {
	Type     string `doc:"Paste type: text (default) or link" example:"text" query:"type"`
	Access   string `doc:"Service access credential"          query:"access"`
	Password string `doc:"Owner credential to set on the new paste" query:"password"`
	RawBody  []byte
}

// CreatePasteResponse is the response for a successfully created paste.
type CreatePasteResponse struct {
	Headers struct {
		Location string `doc:"The paste location" header:"Location"`
	}
	Body SavedBody
}

// UpsertPasteRequest creates or overwrites the paste with the given id.
type UpsertPasteRequest struct {
	ID       string `doc:"The paste id" example:"j4yNBLFv" path:"id"`
	Type     string `doc:"Paste type: text (default) or link" example:"text" query:"type"`
	Access   string `doc:"Service access credential" query:"access"`
	Password string `doc:"Owner credential: required to overwrite a protected paste, set on a new one" query:"password"`
	RawBody  []byte
}

// UpsertPasteResponse reports the saved paste; Status is 201 when the write
// created the id and 200 when it overwrote an existing paste.
type UpsertPasteResponse struct {
	Status  int
	Headers struct {
		Location string `doc:"The paste location" header:"Location"`
	}
	Body SavedBody
}

// SavedBody describes a saved paste.
type SavedBody struct {
	ID   string `doc:"The paste id"       example:"j4yNBLFv"                      json:"id"`
	Path string `doc:"Path to the paste"  example:"/j4yNBLFv"                     json:"path"`
	URL  string `doc:"Full URL"           example:"http://localhost:8888/j4yNBLFv" json:"url"`
}

// ReadPasteRequest fetches a paste body.
type ReadPasteRequest struct {
	ID string `doc:"The paste id" example:"j4yNBLFv" path:"id"`
}

// ReadPasteResponse serves text pastes as a raw body and link pastes as a
// redirect to the stored target.
type ReadPasteResponse struct {
	Status  int
	Headers struct {
		ContentType string `doc:"Body content type"                header:"Content-Type"`
		Location    string `doc:"Redirect target for link pastes"  header:"Location"`
	}
	Body []byte
}

// StatsRequest fetches view statistics for a paste.
type StatsRequest struct {
	ID string `doc:"The paste id" example:"j4yNBLFv" path:"id"`
}

// StatsResponse is the response for the stats endpoint.
type StatsResponse struct {
	Body StatsBody
}

// StatsBody describes one paste without its content.
type StatsBody struct {
	ID           string    `doc:"The paste id"                 example:"j4yNBLFv" json:"id"`
	Kind         string    `doc:"Paste type"                   example:"text"     json:"kind"`
	Size         int       `doc:"Content size in bytes"        example:"42"       json:"size"`
	ViewCount    uint64    `doc:"Number of reads"              example:"7"        json:"view_count"`
	CreatedAt    time.Time `doc:"Creation time"                json:"created_at"`
	UpdatedAt    time.Time `doc:"Time of the last write"       json:"updated_at"`
	LastViewedAt time.Time `doc:"Time of the last read"        json:"last_viewed_at"`
}

// ListRequest lists all pastes.
type ListRequest struct {
	Access string `doc:"Service access credential" query:"access"`
}

// ListResponse is the response for the listing endpoint.
type ListResponse struct {
	Body []StatsBody
}

// DeletePasteRequest removes a paste.
type DeletePasteRequest struct {
	ID       string `doc:"The paste id" example:"j4yNBLFv" path:"id"`
	Access   string `doc:"Service access credential" query:"access"`
	Password string `doc:"Owner credential of the paste" query:"password"`
}

// DeletePasteResponse confirms a deletion.
type DeletePasteResponse struct {
	Body struct {
		ID string `doc:"The removed paste id" example:"j4yNBLFv" json:"id"`
	}
}
