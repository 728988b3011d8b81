package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

type resumeResp struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Status string `json:"status"`
	Owner  *struct {
		Email string `json:"email"`
	} `json:"owner"`
	Score *int `json:"score"`
}

func uploadedResumeID(t *testing.T, e *testEnv, bearer string) string {
	t.Helper()
	w := e.uploadPDF(t, bearer, "cv.pdf", "%PDF-1.4 content")
	require.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		Resume resumeResp `json:"resume"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Resume.ID)
	return resp.Resume.ID
}

func TestUpload_RequiresSession(t *testing.T) {
	e := newTestEnv(t)
	w := e.uploadPDF(t, "", "cv.pdf", "x")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpload_AcceptsPDFOnly(t *testing.T) {
	e := newTestEnv(t)
	u := e.createUser(t, "ada@example.com", "Ada")
	session := e.sessionFor(t, u)

	w := e.uploadPDF(t, session, "cv.pdf", "%PDF-1.4")
	require.Equal(t, http.StatusCreated, w.Code)

	body, ct := pdfUpload(t, "cv.docx", "word doc", "application/msword")
	res := e.do(http.MethodPost, "/api/resumes", session, body, ct)
	require.Equal(t, http.StatusBadRequest, res.Code)

	// missing file part
	res = e.doJSON(http.MethodPost, "/api/resumes", session, "")
	require.Equal(t, http.StatusBadRequest, res.Code)
}

func TestMine_ListsOnlyOwnResumes(t *testing.T) {
	e := newTestEnv(t)
	ada := e.createUser(t, "ada@example.com", "Ada")
	bob := e.createUser(t, "bob@example.com", "Bob")

	uploadedResumeID(t, e, e.sessionFor(t, ada))
	uploadedResumeID(t, e, e.sessionFor(t, bob))

	w := e.doJSON(http.MethodGet, "/api/resumes/mine", e.sessionFor(t, ada), "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Resumes []resumeResp `json:"resumes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Resumes, 1)
	require.Equal(t, ada.ID, resp.Resumes[0].UserID)
}

func TestList_AdminOnlyWithFilters(t *testing.T) {
	e := newTestEnv(t)
	ada := e.createUser(t, "ada@example.com", "Ada Lovelace")
	bob := e.createUser(t, "bob@example.com", "Bob")
	admin := e.createAdmin(t, "root@example.com", "Root")

	uploadedResumeID(t, e, e.sessionFor(t, ada))
	uploadedResumeID(t, e, e.sessionFor(t, bob))

	// standard users are rejected
	w := e.doJSON(http.MethodGet, "/api/resumes", e.sessionFor(t, ada), "")
	require.Equal(t, http.StatusForbidden, w.Code)

	adminSession := e.sessionFor(t, admin)
	w = e.doJSON(http.MethodGet, "/api/resumes?page=1&limit=10", adminSession, "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Resumes    []resumeResp `json:"resumes"`
		Total      int          `json:"total"`
		TotalPages int          `json:"totalPages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Total)
	require.Len(t, resp.Resumes, 2)
	require.NotNil(t, resp.Resumes[0].Owner)

	// owner search narrows to matching users
	w = e.doJSON(http.MethodGet, "/api/resumes?search=lovelace", adminSession, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Total)
	require.Equal(t, ada.ID, resp.Resumes[0].UserID)

	// unknown status filter is rejected
	w = e.doJSON(http.MethodGet, "/api/resumes?status=archived", adminSession, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestList_NormalizesOutOfRangePaging(t *testing.T) {
	e := newTestEnv(t)
	ada := e.createUser(t, "ada@example.com", "Ada")
	admin := e.createAdmin(t, "root@example.com", "Root")
	uploadedResumeID(t, e, e.sessionFor(t, ada))

	w := e.doJSON(http.MethodGet, "/api/resumes?page=0&limit=0", e.sessionFor(t, admin), "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Resumes     []resumeResp `json:"resumes"`
		Total       int          `json:"total"`
		TotalPages  int          `json:"totalPages"`
		CurrentPage int          `json:"currentPage"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.CurrentPage)
	require.Equal(t, 1, resp.TotalPages)
	require.Equal(t, 1, resp.Total)
	require.Len(t, resp.Resumes, 1)
}

func TestGetAndDownload_OwnershipMatrix(t *testing.T) {
	e := newTestEnv(t)
	ada := e.createUser(t, "ada@example.com", "Ada")
	bob := e.createUser(t, "bob@example.com", "Bob")
	admin := e.createAdmin(t, "root@example.com", "Root")

	id := uploadedResumeID(t, e, e.sessionFor(t, ada))

	cases := []struct {
		name    string
		session string
		want    int
	}{
		{"owner", e.sessionFor(t, ada), http.StatusOK},
		{"other user", e.sessionFor(t, bob), http.StatusForbidden},
		{"admin", e.sessionFor(t, admin), http.StatusOK},
	}
	for _, tc := range cases {
		w := e.doJSON(http.MethodGet, "/api/resumes/"+id, tc.session, "")
		require.Equal(t, tc.want, w.Code, "get as %s", tc.name)

		w = e.doJSON(http.MethodGet, "/api/resumes/"+id+"/download", tc.session, "")
		require.Equal(t, tc.want, w.Code, "download as %s", tc.name)
	}

	// download streams the original bytes under the original name
	w := e.doJSON(http.MethodGet, "/api/resumes/"+id+"/download", e.sessionFor(t, ada), "")
	require.Equal(t, "%PDF-1.4 content", w.Body.String())
	require.Contains(t, w.Header().Get("Content-Disposition"), `filename="cv.pdf"`)

	w = e.doJSON(http.MethodGet, "/api/resumes/missing", e.sessionFor(t, admin), "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestReview_AdminDecisionNotifiesOwner(t *testing.T) {
	e := newTestEnv(t)
	ada := e.createUser(t, "ada@example.com", "Ada")
	admin := e.createAdmin(t, "root@example.com", "Root")

	id := uploadedResumeID(t, e, e.sessionFor(t, ada))
	mailsBefore := len(e.mail.sent)

	// non-admins cannot review
	w := e.doJSON(http.MethodPut, "/api/resumes/"+id+"/review", e.sessionFor(t, ada), `{"status":"approved"}`)
	require.Equal(t, http.StatusForbidden, w.Code)

	adminSession := e.sessionFor(t, admin)
	w = e.doJSON(http.MethodPut, "/api/resumes/"+id+"/review", adminSession, `{"status":"approved","score":90,"notes":"great"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Resume resumeResp `json:"resume"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "approved", resp.Resume.Status)
	require.NotNil(t, resp.Resume.Score)
	require.Equal(t, 90, *resp.Resume.Score)

	// the status change triggered a notification to the owner
	require.Len(t, e.mail.sent, mailsBefore+1)
	mail, _ := e.mail.last()
	require.Equal(t, "ada@example.com", mail.To)
	require.Contains(t, mail.Subject, "APPROVED")

	// same status again: no new notification
	w = e.doJSON(http.MethodPut, "/api/resumes/"+id+"/review", adminSession, `{"status":"approved"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, e.mail.sent, mailsBefore+1)

	// invalid inputs
	w = e.doJSON(http.MethodPut, "/api/resumes/"+id+"/review", adminSession, `{"status":"archived"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	w = e.doJSON(http.MethodPut, "/api/resumes/"+id+"/review", adminSession, `{"status":"approved","score":101}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	w = e.doJSON(http.MethodPut, "/api/resumes/missing/review", adminSession, `{"status":"approved"}`)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestDelete_AdminOnly(t *testing.T) {
	e := newTestEnv(t)
	ada := e.createUser(t, "ada@example.com", "Ada")
	admin := e.createAdmin(t, "root@example.com", "Root")

	id := uploadedResumeID(t, e, e.sessionFor(t, ada))

	w := e.doJSON(http.MethodDelete, "/api/resumes/"+id, e.sessionFor(t, ada), "")
	require.Equal(t, http.StatusForbidden, w.Code)

	adminSession := e.sessionFor(t, admin)
	w = e.doJSON(http.MethodDelete, "/api/resumes/"+id, adminSession, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = e.doJSON(http.MethodGet, "/api/resumes/"+id, adminSession, "")
	require.Equal(t, http.StatusNotFound, w.Code)

	w = e.doJSON(http.MethodDelete, "/api/resumes/"+id, adminSession, "")
	require.Equal(t, http.StatusNotFound, w.Code)
}
