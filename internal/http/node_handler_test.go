package httpapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ctOP-IIITH/backend/internal/service"
)

func TestCreateNodeStatusMapping(t *testing.T) {
	cases := []struct {
		res    service.CreateNodeResult
		status int
	}{
		{service.CreateNodeResult{Status: service.StatusSuccess}, http.StatusCreated},
		{service.CreateNodeResult{Status: service.StatusError, Code: service.CodeSensorTypeNotFound}, http.StatusNotFound},
		{service.CreateNodeResult{Status: service.StatusError, Code: service.CodeVerticalNotFound}, http.StatusNotFound},
		{service.CreateNodeResult{Status: service.StatusError, Code: service.CodeNodeAlreadyExists}, http.StatusConflict},
		{service.CreateNodeResult{Status: service.StatusError, Code: service.CodeNodeAlreadyExistsRemote}, http.StatusConflict},
		{service.CreateNodeResult{Status: service.StatusError, Code: service.CodeRemoteCreateError}, http.StatusBadGateway},
		// a failed descriptor push still created the node
		{service.CreateNodeResult{Status: service.StatusError, Code: service.CodeDescriptorPushError}, http.StatusCreated},
		{service.CreateNodeResult{Status: service.StatusError, Code: service.CodeInternalError}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, createNodeStatus(tc.res), tc.res.Code)
	}
}
