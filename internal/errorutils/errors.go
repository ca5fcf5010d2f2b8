// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package errorutils interprets errors returned by the Azure SDK.
package errorutils

import (
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/juju/errors"
)

// responseError returns the *azcore.ResponseError buried in err,
// or nil if there isn't one.
func responseError(err error) *azcore.ResponseError {
	var respErr *azcore.ResponseError
	if errors.As(errors.Cause(err), &respErr) {
		return respErr
	}
	return nil
}

// ErrorCode returns the service error code from err, if any.
func ErrorCode(err error) string {
	if respErr := responseError(err); respErr != nil {
		return respErr.ErrorCode
	}
	return ""
}
