package error

import "net/http"

type ValidationError string

func (err ValidationError) Error() string {
	return string(err)
}

func (err ValidationError) ErrCode() string {
	return "VALIDATION_ERROR"
}

func (err ValidationError) StatusCode() int {
	return http.StatusBadRequest
}

type InternalServerError string

func (err InternalServerError) Error() string {
	return string(err)
}

func (err InternalServerError) ErrCode() string {
	return "INTERNAL_SERVER_ERROR"
}

func (err InternalServerError) StatusCode() int {
	return http.StatusInternalServerError
}

// DeviceError marks failures of the serial link or the camera.
type DeviceError string

func (err DeviceError) Error() string {
	return string(err)
}

func (err DeviceError) ErrCode() string {
	return "DEVICE_ERROR"
}

func (err DeviceError) StatusCode() int {
	return http.StatusServiceUnavailable
}
