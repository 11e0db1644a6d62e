package service

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gitlab.com/dirk.krummacker/contacts-book/internal/model"
	public "gitlab.com/dirk.krummacker/contacts-book/pkg/model"
)

const (
	// defaultLimit is the page size if the 'limit' URL parameter is omitted.
	defaultLimit = 10

	// maxLimit is the largest page size a client may request.
	maxLimit = 500
)

// listContacts responds with a page of contacts as JSON.
//
// The URL parameter 'limit' specifies how many contacts are returned, 10 by default and at most
// 500. The URL parameter 'offset' specifies how many contacts are skipped in the beginning.
// Together with the 'limit' parameter, one can implement paging. An empty page is an empty list.
//
// REST API calls:
//
//	> curl "http://localhost:8080/contacts"
//	> curl "http://localhost:8080/contacts?limit=20&offset=60"
func (h *handler) listContacts(c *gin.Context) {
	limit, offset, ok := parseLimitAndOffset(c)
	if !ok {
		return
	}
	contacts, err := h.deps.Contacts.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, toResponses(contacts))
}

// parseLimitAndOffset inspects the URL parameters and determines values for limit and offset of
// the result set.
func parseLimitAndOffset(c *gin.Context) (limit int, offset int, success bool) {
	limit = defaultLimit
	if s := c.Query("limit"); s != "" {
		var err error
		limit, err = strconv.Atoi(s)
		if err != nil || limit < 1 || limit > maxLimit {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid limit parameter"})
			return 0, 0, false
		}
	}
	if s := c.Query("offset"); s != "" {
		var err error
		offset, err = strconv.Atoi(s)
		if err != nil || offset < 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid offset parameter"})
			return 0, 0, false
		}
	}
	return limit, offset, true
}

// searchContacts responds with one contact whose name, surname and email contain the values of
// the URL parameters of the same names, ignoring case. Omitted parameters do not restrict the
// search. If several contacts match, any one of them is returned.
//
// REST API calls:
//
//	> curl "http://localhost:8080/contacts/search?name=eri"
//	> curl "http://localhost:8080/contacts/search?surname=muster&email=example.com"
func (h *handler) searchContacts(c *gin.Context) {
	contact, err := h.deps.Contacts.Find(c.Request.Context(),
		c.Query("name"), c.Query("surname"), c.Query("email"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if contact == nil {
		h.respondError(c, fmt.Errorf("search: %w", model.ErrNotFound))
		return
	}
	c.IndentedJSON(http.StatusOK, toResponse(*contact))
}

// upcomingBirthdays responds with all contacts that have their birthday within the next seven
// days, today included.
//
// REST API call:
//
//	> curl "http://localhost:8080/contacts/birthdays"
func (h *handler) upcomingBirthdays(c *gin.Context) {
	contacts, err := h.deps.Contacts.UpcomingBirthdays(c.Request.Context(), h.deps.Now())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, toResponses(contacts))
}

// createContact inserts the contact specified in the request's JSON into the database. It responds
// with the full contact data including the newly assigned id. All fields are required.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts --request "POST" --include --header "Content-Type: application/json" --data '{"name": "Erika", "surname": "Mustermann", "email": "erika@example.com", "phone": "0815471100", "birthday": "1969-03-02"}'
func (h *handler) createContact(c *gin.Context) {
	var body public.ContactSchema
	if err := c.ShouldBindJSON(&body); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid JSON"})
		return
	}
	if err := body.Validate(); err != nil {
		h.respondError(c, err)
		return
	}
	created, err := h.deps.Contacts.Create(c.Request.Context(), model.NewContact{
		Name:     body.Name,
		Surname:  body.Surname,
		Email:    body.Email,
		Phone:    body.Phone,
		Birthday: *body.Birthday,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.IndentedJSON(http.StatusCreated, toResponse(*created))
}

// findContactByID locates the contact whose ID value matches the id parameter of the request URL,
// then returns that contact as a response.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/56
func (h *handler) findContactByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	contact, err := h.deps.Contacts.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if contact == nil {
		h.respondError(c, fmt.Errorf("contact %d: %w", id, model.ErrNotFound))
		return
	}
	c.IndentedJSON(http.StatusOK, toResponse(*contact))
}

// updateContactByID updates the contact whose ID value matches the id parameter of the request
// URL, updates the values specified in the JSON (and only those), and finally responds with the
// new version of the contact. PUT and PATCH behave the same.
//
// Example REST API calls:
//
//	> curl http://localhost:8080/contacts/56 --request "PUT" --include --header "Content-Type: application/json" --data '{"phone": "81970"}'
//	> curl http://localhost:8080/contacts/56 --request "PATCH" --include --header "Content-Type: application/json" --data '{"birthday": "1972-06-06"}'
func (h *handler) updateContactByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var body public.ContactUpdateSchema
	if err := c.ShouldBindJSON(&body); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid JSON"})
		return
	}
	// It only makes sense to continue if we have at least one value to update.
	if body.IsEmpty() {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "no values to be updated"})
		return
	}
	if err := body.Validate(); err != nil {
		h.respondError(c, err)
		return
	}

	updated, err := h.deps.Contacts.Update(c.Request.Context(), id, model.ContactPatch{
		Name:     body.Name,
		Surname:  body.Surname,
		Email:    body.Email,
		Phone:    body.Phone,
		Birthday: body.Birthday,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	if updated == nil {
		h.respondError(c, fmt.Errorf("contact %d: %w", id, model.ErrNotFound))
		return
	}
	c.IndentedJSON(http.StatusOK, toResponse(*updated))
}

// deleteContactByID deletes the contact whose ID value matches the id parameter of the request URL
// from the database. It responds with the contact as it was before the deletion.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/56 --request "DELETE"
func (h *handler) deleteContactByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	deleted, err := h.deps.Contacts.Delete(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if deleted == nil {
		h.respondError(c, fmt.Errorf("contact %d: %w", id, model.ErrNotFound))
		return
	}
	c.IndentedJSON(http.StatusOK, toResponse(*deleted))
}

// parseID reads the id parameter of the request URL. A value that is not a number cannot name a
// contact, so it is answered with NOT FOUND.
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "invalid id parameter"})
		return 0, false
	}
	return id, true
}

func toResponse(contact model.Contact) public.ContactResponse {
	return public.ContactResponse{
		Id:       contact.Id,
		Name:     contact.Name,
		Surname:  contact.Surname,
		Email:    contact.Email,
		Phone:    contact.Phone,
		Birthday: contact.Birthday,
	}
}

func toResponses(contacts []model.Contact) []public.ContactResponse {
	responses := make([]public.ContactResponse, 0, len(contacts))
	for _, contact := range contacts {
		responses = append(responses, toResponse(contact))
	}
	return responses
}
