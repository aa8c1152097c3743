package api

import service "github.com/okian/pushlog/internal/app"

// halLink is a single hypermedia link.
type halLink struct {
	Href string `json:"href"`
}

type halLinks map[string]halLink

// digestResource is the hypermedia shape of a digest. Status is set on
// creation acks only: "accepted" signals that read views materialize
// asynchronously and may lag behind this response.
type digestResource struct {
	DigestID    string   `json:"digestId"`
	Description string   `json:"description"`
	Status      string   `json:"status,omitempty"`
	Links       halLinks `json:"_links"`
}

func digestHAL(d service.Digest) digestResource {
	self := "/digests/" + d.DigestID
	return digestResource{
		DigestID:    d.DigestID,
		Description: d.Description,
		Links: halLinks{
			"self":    {Href: self},
			"inboxes": {Href: self + "/inboxes"},
		},
	}
}

// inboxResource is the hypermedia shape of an inbox. The add-commit link
// is the URL a provider webhook should be pointed at.
type inboxResource struct {
	InboxID  string   `json:"inboxId"`
	DigestID string   `json:"digestId"`
	Family   string   `json:"family"`
	Name     string   `json:"name"`
	URL      string   `json:"url,omitempty"`
	Status   string   `json:"status,omitempty"`
	Links    halLinks `json:"_links"`
}

func inboxHAL(in service.Inbox) inboxResource {
	self := "/inboxes/" + in.InboxID
	return inboxResource{
		InboxID:  in.InboxID,
		DigestID: in.DigestID,
		Family:   in.Family,
		Name:     in.Name,
		URL:      in.URL,
		Links: halLinks{
			"self":       {Href: self},
			"digest":     {Href: "/digests/" + in.DigestID},
			"add-commit": {Href: self + "/commits"},
		},
	}
}

// inboxListResource embeds every inbox a digest owns.
type inboxListResource struct {
	DigestID string                     `json:"digestId"`
	Count    int                        `json:"count"`
	Embedded map[string][]inboxResource `json:"_embedded"`
	Links    halLinks                   `json:"_links"`
}

func inboxListHAL(list service.InboxList) inboxListResource {
	inboxes := make([]inboxResource, 0, len(list.Inboxes))
	for _, in := range list.Inboxes {
		inboxes = append(inboxes, inboxHAL(in))
	}
	self := "/digests/" + list.DigestID + "/inboxes"
	return inboxListResource{
		DigestID: list.DigestID,
		Count:    len(inboxes),
		Embedded: map[string][]inboxResource{"inboxes": inboxes},
		Links: halLinks{
			"self":   {Href: self},
			"digest": {Href: "/digests/" + list.DigestID},
		},
	}
}
