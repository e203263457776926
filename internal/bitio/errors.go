package bitio

import "errors"

// ErrBufferTooSmall is returned by Copy when the destination buffer cannot
// hold the source message's current contents.
var ErrBufferTooSmall = errors.New("bitio: destination buffer smaller than source message")
