package protocol

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"arrivalcard/internal/payload"
	"arrivalcard/internal/types"
)

// Step names, used in error values and telemetry.
const (
	StepInitActionToken  = "initActionToken"
	StepGotoAdd          = "gotoAdd"
	StepSelectList       = "getSelectList"
	StepHealthDecl       = "checkHealthDeclaration"
	StepNext             = "next"
	StepGotoPreview      = "gotoPreview"
	StepSubmit           = "submit"
	StepGotoSubmitted    = "gotoSubmitted"
	StepDownloadDocument = "downloadArrivalCard"
)

type referenceItem struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Code  string `json:"code,omitempty"`
}

func toRows(items []referenceItem) []types.ReferenceRow {
	rows := make([]types.ReferenceRow, 0, len(items))
	for _, it := range items {
		rows = append(rows, types.ReferenceRow{Key: it.Key, Value: it.Value, Code: it.Code})
	}
	return rows
}

// InitActionToken exchanges the verification token and the client-side
// submission ID for the action token that authenticates all later steps.
func (c *Client) InitActionToken(ctx context.Context, verificationToken, submissionID string) (string, error) {
	body := map[string]string{
		"token":    verificationToken,
		"submitId": submissionID,
	}
	env, err := c.post(ctx, StepInitActionToken, "/security/initActionToken", "", body)
	if err != nil {
		return "", err
	}
	var data struct {
		ActionToken string `json:"actionToken"`
	}
	if err := decodeData(StepInitActionToken, env, &data); err != nil {
		return "", err
	}
	if data.ActionToken == "" {
		return "", &types.StructuralResponseError{Step: StepInitActionToken, Missing: "actionToken"}
	}
	return data.ActionToken, nil
}

// GotoAdd initializes the remote form session and returns the small
// option lists that seed the resolver's session cache.
func (c *Client) GotoAdd(ctx context.Context, bearer string) (map[types.Category][]types.ReferenceRow, error) {
	env, err := c.post(ctx, StepGotoAdd, "/arrival-card/gotoAdd", bearer, map[string]string{})
	if err != nil {
		return nil, err
	}
	var data struct {
		GenderList    []referenceItem `json:"genderList"`
		TravelModes   []referenceItem `json:"tranModeList"`
		AccomTypes    []referenceItem `json:"accomTypeList"`
		PurposeList   []referenceItem `json:"purposeList"`
	}
	if err := decodeData(StepGotoAdd, env, &data); err != nil {
		return nil, err
	}
	return map[types.Category][]types.ReferenceRow{
		types.CategoryGender:            toRows(data.GenderList),
		types.CategoryTravelMode:        toRows(data.TravelModes),
		types.CategoryAccommodationType: toRows(data.AccomTypes),
		types.CategoryPurpose:           toRows(data.PurposeList),
	}, nil
}

// SelectList fetches candidate rows for one lookup category, optionally
// scoped by a short search term and a parent key (district by province,
// sub-district by district).
func (c *Client) SelectList(ctx context.Context, bearer string, cat types.Category, search, parentKey string) ([]types.ReferenceRow, error) {
	body := map[string]string{
		"category":   string(cat),
		"searchWord": strings.TrimSpace(search),
		"parentKey":  parentKey,
	}
	env, err := c.post(ctx, StepSelectList, "/selectitem/getSelectList", bearer, body)
	if err != nil {
		return nil, err
	}
	var data struct {
		ItemList []referenceItem `json:"itemList"`
	}
	if err := decodeData(StepSelectList, env, &data); err != nil {
		return nil, err
	}
	return toRows(data.ItemList), nil
}

// CheckHealthDeclaration performs the stateless confirmation call the
// service requires before a form submission is accepted.
func (c *Client) CheckHealthDeclaration(ctx context.Context, bearer string) error {
	_, err := c.post(ctx, StepHealthDecl, "/arrival-card/checkHealthDeclaration", bearer, map[string]string{})
	return err
}

// Next submits the built form payload. The response carries the hidden
// token consumed by gotoPreview, and on the first call of a session the
// form-template ID echoed by later calls.
func (c *Client) Next(ctx context.Context, bearer, hiddenToken, formTemplateID string, form *payload.Form) (newToken, templateID string, err error) {
	body := struct {
		HiddenToken    string        `json:"hiddenToken,omitempty"`
		FormTemplateID string        `json:"formTemplateId,omitempty"`
		Form           *payload.Form `json:"formData"`
	}{
		HiddenToken:    hiddenToken,
		FormTemplateID: formTemplateID,
		Form:           form,
	}
	env, err := c.post(ctx, StepNext, "/arrival-card/next", bearer, body)
	if err != nil {
		return "", "", err
	}
	var data struct {
		HiddenToken    string `json:"hiddenToken"`
		FormTemplateID string `json:"formTemplateId,omitempty"`
	}
	if err := decodeData(StepNext, env, &data); err != nil {
		return "", "", err
	}
	if data.HiddenToken == "" {
		return "", "", &types.StructuralResponseError{Step: StepNext, Missing: "hiddenToken"}
	}
	return data.HiddenToken, data.FormTemplateID, nil
}

// GotoPreview exchanges the step-5 token for the preview token nested in
// the per-traveler preview list. Single-traveler submissions always read
// index 0; an empty list or blank token is a contract break, not an HTTP
// failure.
func (c *Client) GotoPreview(ctx context.Context, bearer, hiddenToken string) (string, error) {
	env, err := c.post(ctx, StepGotoPreview, "/arrival-card/gotoPreview", bearer, map[string]string{
		"hiddenToken": hiddenToken,
	})
	if err != nil {
		return "", err
	}
	var data struct {
		PreviewList []struct {
			HiddenToken string `json:"hiddenToken"`
		} `json:"previewList"`
	}
	if err := decodeData(StepGotoPreview, env, &data); err != nil {
		return "", err
	}
	if len(data.PreviewList) == 0 || data.PreviewList[0].HiddenToken == "" {
		return "", &types.StructuralResponseError{Step: StepGotoPreview, Missing: "previewList[0].hiddenToken"}
	}
	return data.PreviewList[0].HiddenToken, nil
}

// Submit finalizes the submission. The returned token is the short-lived
// credential for result retrieval (steps 8 and 9).
func (c *Client) Submit(ctx context.Context, bearer, previewToken, email string) (string, error) {
	env, err := c.post(ctx, StepSubmit, "/arrival-card/submit", bearer, map[string]string{
		"hiddenToken": previewToken,
		"email":       email,
	})
	if err != nil {
		return "", err
	}
	var data struct {
		HiddenToken string `json:"hiddenToken"`
	}
	if err := decodeData(StepSubmit, env, &data); err != nil {
		return "", err
	}
	if data.HiddenToken == "" {
		return "", &types.StructuralResponseError{Step: StepSubmit, Missing: "hiddenToken"}
	}
	return data.HiddenToken, nil
}

// GotoSubmitted retrieves the assigned arrival-card number. A success
// envelope without a card number means the server is in an inconsistent
// state and is treated as fatal.
func (c *Client) GotoSubmitted(ctx context.Context, bearer, hiddenToken string) (string, error) {
	env, err := c.post(ctx, StepGotoSubmitted, "/arrival-card/gotoSubmitted", bearer, map[string]string{
		"hiddenToken": hiddenToken,
	})
	if err != nil {
		return "", err
	}
	var data struct {
		ArrCardNo string `json:"arrCardNo"`
	}
	if err := decodeData(StepGotoSubmitted, env, &data); err != nil {
		return "", err
	}
	if data.ArrCardNo == "" {
		return "", &types.StructuralResponseError{Step: StepGotoSubmitted, Missing: "arrCardNo"}
	}
	return data.ArrCardNo, nil
}

// DownloadDocument retrieves the printable arrival-card document. Unlike
// every other endpoint this returns a raw binary body, not the JSON
// envelope.
func (c *Client) DownloadDocument(ctx context.Context, bearer, hiddenToken string) ([]byte, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body := strings.NewReader(fmt.Sprintf(`{"hiddenToken":%q}`, hiddenToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/arrival-card/downloadArrivalCard", body)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", StepDownloadDocument, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+bearer)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if timeoutErr := c.asTimeout(StepDownloadDocument, start, err); timeoutErr != nil {
			return nil, timeoutErr
		}
		return nil, fmt.Errorf("%s request failed: %w", StepDownloadDocument, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &types.ServerRejectionError{
			Step:        StepDownloadDocument,
			MessageCode: fmt.Sprintf("HTTP_%d", resp.StatusCode),
			MessageDesc: http.StatusText(resp.StatusCode),
		}
	}
	doc, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", StepDownloadDocument, err)
	}
	if len(doc) == 0 {
		return nil, &types.StructuralResponseError{Step: StepDownloadDocument, Missing: "document body"}
	}
	return doc, nil
}
