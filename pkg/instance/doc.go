// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package instance defines the LXD instance value types shared by the
// filter, network, hostname and inventory packages.
//
// Values are created fresh from each endpoint fetch and are never mutated
// after the fetch returns. NetworkState keeps interfaces in the order the
// LXD API declared them so that address selection is deterministic.
package instance
