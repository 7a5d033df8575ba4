package handlers_test

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brokerage/internal/catalog"
	"brokerage/internal/domain"
)

func listingForm(title string) url.Values {
	return url.Values{
		"title":        {title},
		"description":  {"Sobrado with backyard"},
		"type":         {"sale"},
		"status":       {"available"},
		"price":        {"390000"},
		"city":         {"Toledo"},
		"neighborhood": {"Jardim Gisela"},
		"area":         {"200"},
		"bedrooms":     {"3"},
		"garage":       {"0"},
		"amenities":    {"Pool\nBarbecue\n\n"},
		"images":       {"https://images.example.com/sobrado.jpg"},
		"highlighted":  {"1"},
	}
}

func TestAdminCreateListing(t *testing.T) {
	env := newEnv(t)
	sid := env.login(t, "admin@brokerage.test")

	resp := env.postForm(t, "/admin/properties", listingForm("Sobrado Jardim Gisela"), sid)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin/properties", resp.Header.Get("Location"))

	all := env.deps.Store.All()
	require.Len(t, all, 7)
	p := all[6]
	assert.Equal(t, "Sobrado Jardim Gisela", p.Title)
	assert.Equal(t, []string{"Pool", "Barbecue"}, p.Amenities)
	require.NotNil(t, p.Features.Garage)
	assert.Equal(t, 0, *p.Features.Garage)
	assert.Nil(t, p.Features.Bathrooms)
	assert.False(t, p.CreatedAt.IsZero())

	// newest listing leads the public catalog and matches garage=0
	body := readBody(t, env.get(t, "/properties?garage=0"))
	assert.Equal(t, []string{p.ID}, cardIDs(body))
}

func TestAdminCreateValidation(t *testing.T) {
	env := newEnv(t)
	sid := env.login(t, "admin@brokerage.test")

	form := listingForm("")
	form.Set("price", "0")
	form.Set("area", "abc")
	form.Del("images")
	resp := env.postForm(t, "/admin/properties", form, sid)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := readBody(t, resp)
	for _, field := range []string{"title", "price", "area", "images"} {
		assert.Contains(t, body, `data-field="`+field+`"`)
	}
	assert.Len(t, env.deps.Store.All(), 6, "invalid form must not write")
}

func TestAdminRejectsNonFiniteNumbers(t *testing.T) {
	env := newEnv(t)
	sid := env.login(t, "admin@brokerage.test")

	for _, tc := range []struct{ input, raw, field string }{
		{"price", "Inf", "price"},
		{"area", "NaN", "area"},
		{"builtArea", "-Inf", "builtArea"},
		{"lat", "NaN", "coordinates"},
	} {
		form := listingForm("Casa " + tc.input)
		form.Set(tc.input, tc.raw)
		if tc.input == "lat" {
			form.Set("lng", "-53.45")
		}
		resp := env.postForm(t, "/admin/properties", form, sid)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, "%s=%s", tc.input, tc.raw)
		assert.Contains(t, readBody(t, resp), `data-field="`+tc.field+`"`, "%s=%s", tc.input, tc.raw)
	}
	assert.Len(t, env.deps.Store.All(), 6, "non-finite input must not be stored")

	// every stored listing still encodes
	resp := env.get(t, "/api/v1/properties")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func multipartListing(t *testing.T, csrf string, form url.Values, img []byte, contentType string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("csrf", csrf))
	for k, vs := range form {
		for _, v := range vs {
			require.NoError(t, w.WriteField(k, v))
		}
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="uploads"; filename="front.png"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(img)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestAdminUploadInlinesImages(t *testing.T) {
	env := newEnv(t)
	sid := env.login(t, "admin@brokerage.test")

	form := listingForm("Casa com fotos")
	form.Del("images")
	body, ct := multipartListing(t, env.csrf, form, []byte("\x89PNG fake"), "image/png")
	req := httptest.NewRequest("POST", "/admin/properties", body)
	req.Header.Set("Content-Type", ct)
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: env.csrf})
	req.AddCookie(sid)
	resp := env.do(t, req)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	all := env.deps.Store.All()
	require.Len(t, all, 7)
	require.Len(t, all[6].Images, 1)
	assert.True(t, strings.HasPrefix(all[6].Images[0], "data:image/png;base64,"))
}

func TestAdminUploadTooLarge(t *testing.T) {
	env := newEnv(t)
	sid := env.login(t, "admin@brokerage.test")

	form := listingForm("Casa grande")
	big := bytes.Repeat([]byte{0xff}, 128<<10) // over the 64 KiB test limit
	body, ct := multipartListing(t, env.csrf, form, big, "image/jpeg")
	req := httptest.NewRequest("POST", "/admin/properties", body)
	req.Header.Set("Content-Type", ct)
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: env.csrf})
	req.AddCookie(sid)
	resp := env.do(t, req)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `data-field="images"`)
	assert.Len(t, env.deps.Store.All(), 6)
}

func TestAdminUpdateListing(t *testing.T) {
	env := newEnv(t)
	sid := env.login(t, "admin@brokerage.test")
	before, _ := env.deps.Store.GetPropertyByID("1")

	form := listingForm("Casa Moderna reformada")
	form.Set("status", "sold")
	resp := env.postForm(t, "/admin/properties/1", form, sid)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	after, ok := env.deps.Store.GetPropertyByID("1")
	require.True(t, ok)
	assert.Equal(t, "Casa Moderna reformada", after.Title)
	assert.Equal(t, domain.StatusSold, after.Status)
	assert.True(t, before.CreatedAt.Equal(after.CreatedAt), "creation date must be kept")

	// sold listings drop out of the featured set
	assert.NotContains(t, cardIDs(readBody(t, env.get(t, "/"))), "1")

	resp = env.postForm(t, "/admin/properties/nope", form, sid)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminDeleteIsIdempotent(t *testing.T) {
	env := newEnv(t)
	sid := env.login(t, "admin@brokerage.test")

	for i := 0; i < 2; i++ {
		resp := env.postForm(t, "/admin/properties/2/delete", nil, sid)
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	}
	_, ok := env.deps.Store.GetPropertyByID("2")
	assert.False(t, ok)
	assert.Len(t, env.deps.Store.All(), 5)
	assert.Equal(t, http.StatusNotFound, env.get(t, "/properties/2").StatusCode)
}

func TestAdminListSearch(t *testing.T) {
	env := newEnv(t)
	sid := env.login(t, "admin@brokerage.test")
	body := readBody(t, env.get(t, "/admin/properties?q=cascavel", sid))
	assert.Contains(t, body, `data-id="1"`)
	assert.Contains(t, body, `data-id="5"`)
	assert.NotContains(t, body, `data-id="2"`)
}

func TestAdminWriteFailureKeepsState(t *testing.T) {
	env := newEnv(t)
	repo := catalog.NewMemoryRepository(catalog.SeedProperties()...)
	store, err := catalog.NewStore(context.Background(), repo)
	require.NoError(t, err)
	repo.Err = errors.New("disk full")
	env.deps.Store = store
	env.rebuild(t)
	sid := env.login(t, "admin@brokerage.test")

	resp := env.postForm(t, "/admin/properties", listingForm("Não salva"), sid)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Could not save your changes")
	assert.Len(t, store.All(), 6)

	resp = env.postForm(t, "/admin/properties/1/delete", nil, sid)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	_, ok := store.GetPropertyByID("1")
	assert.True(t, ok)
}

func TestAdminSettings(t *testing.T) {
	env := newEnv(t)
	sid := env.login(t, "admin@brokerage.test")

	bad := url.Values{"sellerName": {""}, "whatsappNumber": {"call me"}}
	resp := env.postForm(t, "/admin/settings", bad, sid)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `data-field="whatsappNumber"`)

	good := url.Values{"sellerName": {"Ana Souza"}, "whatsappNumber": {"5511988887777"}, "metaDescription": {"Imóveis em SP"}}
	resp = env.postForm(t, "/admin/settings", good, sid)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	body := readBody(t, env.get(t, "/contact"))
	assert.Contains(t, body, "https://wa.me/5511988887777?text=Hello%20Ana")
	assert.Contains(t, body, "Imóveis em SP")
}
